package suggest

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

//go:embed rules/rules.toml
var defaultRules []byte

const maxSuggestions = 4

type rule struct {
	Keyword   string   `toml:"keyword"`
	Questions []string `toml:"questions"`
}

type categoryRules struct {
	Questions []string `toml:"questions"`
}

type ruleSet struct {
	Defaults   []string                 `toml:"defaults"`
	Rules      []rule                   `toml:"rule"`
	Categories map[string]categoryRules `toml:"category"`
}

// Engine proposes follow-up questions for a visitor based on keyword
// rules. Rules are matched against both the visitor's question and the
// guide's answer, in rule-file order.
type Engine struct {
	rules ruleSet
}

type Option func(*Engine) error

// WithRules replaces the built-in rule table with a custom TOML document.
func WithRules(data []byte) Option {
	return func(e *Engine) error {
		var rs ruleSet
		if err := toml.Unmarshal(data, &rs); err != nil {
			return goerr.Wrap(err, "failed to parse suggestion rules")
		}
		e.rules = rs
		return nil
	}
}

func New(opts ...Option) (*Engine, error) {
	e := &Engine{}
	if err := toml.Unmarshal(defaultRules, &e.rules); err != nil {
		return nil, goerr.Wrap(err, "failed to parse built-in suggestion rules")
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// GetSuggestions returns up to four follow-up questions for the given
// exchange. When no rule keyword appears in either the question or the
// answer, the default suggestions are returned instead.
func (e *Engine) GetSuggestions(query, answer string) []string {
	queryLower := strings.ToLower(query)
	answerLower := strings.ToLower(answer)

	var collected []string
	for _, r := range e.rules.Rules {
		if strings.Contains(queryLower, r.Keyword) || strings.Contains(answerLower, r.Keyword) {
			collected = append(collected, r.Questions...)
		}
	}

	collected = dedup(collected)
	if len(collected) > 0 {
		return cap4(collected)
	}

	return cap4(e.rules.Defaults)
}

// GetContextualSuggestions builds suggestions around entities detected
// in the conversation, keyed by "animals" and "activities".
func (e *Engine) GetContextualSuggestions(entities map[string][]string) []string {
	var suggestions []string

	if animals := entities["animals"]; len(animals) > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("Tell me more about %s", animals[0]),
			fmt.Sprintf("Where can I see %s?", animals[0]),
			fmt.Sprintf("Conservation status of %s?", animals[0]),
		)
	}

	if activities := entities["activities"]; len(activities) > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("How much does %s cost?", activities[0]),
			fmt.Sprintf("What's the best time for %s?", activities[0]),
			fmt.Sprintf("How long is the %s?", activities[0]),
		)
	}

	return cap4(suggestions)
}

// GetSmartFollowups inspects the guide's answer for comparison lists,
// prices, conservation topics and scheduling, and returns follow-ups
// tailored to what the answer actually covered.
func (e *Engine) GetSmartFollowups(answer string) []string {
	answerLower := strings.ToLower(answer)

	var suggestions []string

	if strings.Count(answer, "•") > 2 || strings.Count(answer, "\n") > 3 {
		suggestions = append(suggestions,
			"Compare the top 3 options",
			"Which one would you recommend?",
		)
	}

	if strings.Contains(answerLower, "npr") || strings.Contains(answerLower, "price") || containsDigit(answer) {
		suggestions = append(suggestions,
			"Are there any discounts available?",
			"What's included in this price?",
		)
	}

	if strings.Contains(answerLower, "endangered") || strings.Contains(answerLower, "conservation") {
		suggestions = append(suggestions,
			"How can I support conservation efforts?",
			"What are the main threats to these species?",
		)
	}

	if strings.Contains(answerLower, "morning") || strings.Contains(answerLower, "evening") || strings.Contains(answerLower, "time") {
		suggestions = append(suggestions,
			"What's the daily schedule for activities?",
			"Can I customize the timing?",
		)
	}

	return suggestions
}

// GetCategorySuggestions returns the canned suggestions for a topic
// category ("wildlife", "activities" or "planning"). Unknown categories
// fall back to the defaults.
func (e *Engine) GetCategorySuggestions(category string) []string {
	if c, ok := e.rules.Categories[category]; ok {
		return cap4(c.Questions)
	}
	return cap4(e.rules.Defaults)
}

func dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func cap4(items []string) []string {
	if len(items) > maxSuggestions {
		items = items[:maxSuggestions]
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
