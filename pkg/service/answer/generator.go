package answer

import (
	"context"
	_ "embed"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/sauraha-lab/parkguide/pkg/domain/model"
	"github.com/sauraha-lab/parkguide/pkg/domain/types"
)

//go:embed prompt/guide_system.md
var systemPrompt string

const defaultGenerateTimeout = 30 * time.Second

// roboticLeadIns are phrases the model tends to prepend despite the
// prompt; they are stripped from the final answer
var roboticLeadIns = []string{
	"Based on the provided context, ",
	"Based on the context, ",
	"Based on the context provided, ",
	"According to the context, ",
	"Based on the information provided, ",
}

// Generator renders the guide prompt and invokes the language generation
// service once per query, with a bounded timeout and no retry
type Generator struct {
	llm     gollem.LLMClient
	timeout time.Duration
}

// Option is a functional option for Generator configuration
type Option func(*Generator)

// WithTimeout bounds the generation service call
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// New creates a Generator backed by the given LLM client
func New(llm gollem.LLMClient, opts ...Option) (*Generator, error) {
	if llm == nil {
		return nil, goerr.New("LLM client is required")
	}

	g := &Generator{
		llm:     llm,
		timeout: defaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Input carries everything one generation call is conditioned on
type Input struct {
	Query   string
	Context []model.Chunk
	History []model.Turn
}

// Output is the raw answer plus the chunks actually used as context,
// propagated for source attribution
type Output struct {
	Answer  string
	Context []model.Chunk
}

// Generate renders the prompt with the retrieved context, the serialized
// conversation history and the visitor's question, then makes a single
// generation call
func (g *Generator) Generate(ctx context.Context, in Input) (*Output, error) {
	session, err := g.llm.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(types.ErrGeneration, err.Error())
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := session.GenerateContent(callCtx, gollem.Text(buildUserPrompt(in)))
	if err != nil {
		return nil, goerr.Wrap(types.ErrGeneration, err.Error(), goerr.V(types.QueryKey, in.Query))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return nil, goerr.Wrap(types.ErrGeneration, "generation service returned no text")
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	for _, leadIn := range roboticLeadIns {
		text = strings.TrimPrefix(text, leadIn)
	}

	return &Output{
		Answer:  text,
		Context: in.Context,
	}, nil
}

// buildUserPrompt assembles the per-turn prompt: park records, prior
// conversation and the current question
func buildUserPrompt(in Input) string {
	var sb strings.Builder

	sb.WriteString("## Park records:\n\n")
	if len(in.Context) == 0 {
		sb.WriteString("(no matching records)\n")
	}
	for _, chunk := range in.Context {
		sb.WriteString(chunk.Content)
		sb.WriteString("\n---\n")
	}

	if len(in.History) > 0 {
		sb.WriteString("\n## Conversation so far:\n\n")
		for _, turn := range in.History {
			label := "Visitor"
			if turn.Role == types.RoleAssistant {
				label = "Guide"
			}
			sb.WriteString(label)
			sb.WriteString(": ")
			sb.WriteString(turn.Content)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n## Visitor's question:\n\n")
	sb.WriteString(in.Query)
	sb.WriteString("\n\nYour natural, conversational response:")

	return sb.String()
}
