package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sauraha-lab/parkguide/pkg/domain/interfaces"
	"github.com/sauraha-lab/parkguide/pkg/domain/model"
	"github.com/sauraha-lab/parkguide/pkg/domain/types"
	"github.com/sauraha-lab/parkguide/pkg/service/answer"
	"github.com/sauraha-lab/parkguide/pkg/service/format"
	"github.com/sauraha-lab/parkguide/pkg/service/suggest"
	"github.com/sauraha-lab/parkguide/pkg/utils/errutil"
	"github.com/sauraha-lab/parkguide/pkg/utils/logging"
)

const (
	defaultSearchK = 4

	apologyMessage = "I'm sorry, I couldn't find an answer for that right now. " +
		"Please try asking again, or rephrase your question about Chitwan National Park."
)

// ChatUseCase runs the full query cycle: retrieve, generate, decorate,
// suggest, then record the exchange in conversation memory. Memory is
// only mutated after the whole cycle succeeds, so a failed query leaves
// the conversation exactly as it was.
type ChatUseCase struct {
	index     interfaces.VectorIndex
	memory    interfaces.ConversationMemory
	generator *answer.Generator
	suggester *suggest.Engine
	formatter *format.Formatter
	searchK   int

	// serializes query cycles for one conversation
	mu sync.Mutex
}

type Option func(*ChatUseCase)

// WithSearchK overrides how many chunks are retrieved per query.
func WithSearchK(k int) Option {
	return func(uc *ChatUseCase) {
		if k > 0 {
			uc.searchK = k
		}
	}
}

func New(index interfaces.VectorIndex, memory interfaces.ConversationMemory, generator *answer.Generator, suggester *suggest.Engine, formatter *format.Formatter, opts ...Option) *ChatUseCase {
	uc := &ChatUseCase{
		index:     index,
		memory:    memory,
		generator: generator,
		suggester: suggester,
		formatter: formatter,
		searchK:   defaultSearchK,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

type queryConfig struct {
	suggestions bool
	emojis      bool
}

type QueryOption func(*queryConfig)

// WithSuggestions toggles the follow-up question block.
func WithSuggestions(enabled bool) QueryOption {
	return func(c *queryConfig) {
		c.suggestions = enabled
	}
}

// WithEmojis toggles emoji decoration of the answer.
func WithEmojis(enabled bool) QueryOption {
	return func(c *queryConfig) {
		c.emojis = enabled
	}
}

// Query answers one visitor message. It never returns an error: any
// failure in the cycle is logged and reported to the caller as a static
// apology with empty sources and suggestions, leaving memory untouched.
func (uc *ChatUseCase) Query(ctx context.Context, message string, opts ...QueryOption) *model.QueryResult {
	cfg := queryConfig{suggestions: true, emojis: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	result, err := uc.query(ctx, message, cfg)
	if err != nil {
		errutil.Log(ctx, err, "query cycle failed")
		return &model.QueryResult{
			Answer:      apologyMessage,
			Sources:     []string{},
			Suggestions: []string{},
		}
	}

	return result
}

func (uc *ChatUseCase) query(ctx context.Context, message string, cfg queryConfig) (*model.QueryResult, error) {
	if message == "" {
		return nil, goerr.New("empty message")
	}

	history := uc.memory.Snapshot()

	chunks, err := uc.index.Search(ctx, answer.NormalizeQuery(message), uc.searchK)
	if err != nil {
		return nil, goerr.Wrap(err, "retrieval failed", goerr.V("query", message))
	}

	out, err := uc.generator.Generate(ctx, answer.Input{
		Query:   message,
		Context: chunks,
		History: history,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "generation failed", goerr.V("query", message))
	}

	final := out.Answer
	if cfg.emojis {
		final = uc.formatter.FormatResponse(final)
	}

	suggestions := []string{}
	if cfg.suggestions {
		// suggestions are matched against the undecorated answer
		suggestions = uc.suggester.GetSuggestions(message, out.Answer)
	}
	if len(suggestions) > 0 {
		final += format.FormatSuggestions(suggestions)
	}

	// Memory mutation is the last step: a canceled request must not
	// leave a half-recorded exchange behind.
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "request canceled before recording exchange")
	}
	if err := uc.memory.Append(types.RoleUser, message); err != nil {
		return nil, goerr.Wrap(err, "failed to record visitor turn")
	}
	if err := uc.memory.Append(types.RoleAssistant, final); err != nil {
		return nil, goerr.Wrap(err, "failed to record guide turn")
	}

	logging.From(ctx).Debug("query cycle completed",
		"chunks", len(chunks),
		"suggestions", len(suggestions),
		"turns", uc.memory.Len(),
	)

	return &model.QueryResult{
		Answer:      final,
		Sources:     chunkSources(chunks),
		Suggestions: suggestions,
	}, nil
}

// ClearMemory forgets the conversation so far.
func (uc *ChatUseCase) ClearMemory() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.memory.Clear()
}

// GetHistory returns a copy of the recorded conversation turns.
func (uc *ChatUseCase) GetHistory() []model.Turn {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.memory.Snapshot()
}

// GetStats reports the state of the index and the conversation.
func (uc *ChatUseCase) GetStats() model.Stats {
	count, dim := uc.index.Stats()

	status := "ready"
	if count == 0 {
		status = "empty"
	}

	return model.Stats{
		Status:             status,
		VectorCount:        count,
		EmbeddingDimension: dim,
		ConversationTurns:  uc.memory.Len(),
	}
}

func chunkSources(chunks []model.Chunk) []string {
	sources := []string{}
	seen := map[string]struct{}{}
	for _, c := range chunks {
		src, ok := c.Metadata[model.MetaSource]
		if !ok || src == "" {
			continue
		}
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		sources = append(sources, src)
	}
	return sources
}
