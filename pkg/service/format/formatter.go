package format

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

//go:embed vocab/emoji.toml
var defaultVocab []byte

var keycaps = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

var pricePatterns = []struct {
	re      *regexp.Regexp
	rewrite string
}{
	{regexp.MustCompile(`(?i)\bNPR\s+(\d+(?:,\d{3})*)`), "💰 NPR $1"},
	{regexp.MustCompile(`(?i)\bRs\.?\s+(\d+(?:,\d{3})*)`), "💰 Rs. $1"},
	{regexp.MustCompile(`(?i)(\d+(?:,\d{3})*)\s+rupees?`), "💰 $1 rupees"},
}

var listItemPattern = regexp.MustCompile(`^(\d+)[.)]\s+(.+)$`)

type vocabEntry struct {
	Term  string `toml:"term"`
	Emoji string `toml:"emoji"`
}

type vocabFile struct {
	Keywords []vocabEntry `toml:"keywords"`
	Headers  []vocabEntry `toml:"headers"`
}

type keywordRule struct {
	re    *regexp.Regexp
	emoji string
}

// Formatter decorates guide responses with emojis. All formatting
// passes are pure text transforms and idempotent, so a response can be
// run through the formatter again without accumulating emojis.
type Formatter struct {
	keywords []keywordRule
	headers  []vocabEntry
}

type Option func(*Formatter) error

// WithVocab replaces the built-in emoji vocabulary with a custom TOML
// document.
func WithVocab(data []byte) Option {
	return func(f *Formatter) error {
		return f.load(data)
	}
}

func New(opts ...Option) (*Formatter, error) {
	f := &Formatter{}
	if err := f.load(defaultVocab); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func (f *Formatter) load(data []byte) error {
	var vf vocabFile
	if err := toml.Unmarshal(data, &vf); err != nil {
		return goerr.Wrap(err, "failed to parse emoji vocabulary")
	}

	keywords := make([]keywordRule, 0, len(vf.Keywords))
	for _, kw := range vf.Keywords {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw.Term) + `\b`)
		if err != nil {
			return goerr.Wrap(err, "failed to compile keyword pattern", goerr.V("term", kw.Term))
		}
		keywords = append(keywords, keywordRule{re: re, emoji: kw.Emoji})
	}

	f.keywords = keywords
	f.headers = vf.Headers
	return nil
}

// FormatResponse runs the four decoration passes in order: keyword
// emojis, price tags, numbered list keycaps and section headers.
func (f *Formatter) FormatResponse(text string) string {
	text = f.decorateKeywords(text)
	text = f.decoratePrices(text)
	text = f.decorateLists(text)
	text = f.decorateHeaders(text)
	return text
}

// decorateKeywords inserts an emoji before the first occurrence of each
// vocabulary term. The original casing of the matched text is kept. A
// term already preceded by its emoji is left alone.
func (f *Formatter) decorateKeywords(text string) string {
	for _, rule := range f.keywords {
		loc := rule.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if emojiBefore(text, loc[0], rule.emoji) {
			continue
		}
		text = text[:loc[0]] + rule.emoji + " " + text[loc[0]:]
	}
	return text
}

func (f *Formatter) decoratePrices(text string) string {
	for _, p := range pricePatterns {
		pattern, rewrite := p.re, p.rewrite
		matches := pattern.FindAllStringSubmatchIndex(text, -1)
		if matches == nil {
			continue
		}

		var b strings.Builder
		b.Grow(len(text) + len(matches)*8)
		prev := 0
		for _, m := range matches {
			b.WriteString(text[prev:m[0]])
			if emojiBefore(text, m[0], "💰") {
				b.WriteString(text[m[0]:m[1]])
			} else {
				b.Write(pattern.ExpandString(nil, rewrite, text, m))
			}
			prev = m[1]
		}
		b.WriteString(text[prev:])
		text = b.String()
	}
	return text
}

// decorateLists rewrites numbered list items 1-10 into keycap emojis.
// Items numbered beyond 10 are left untouched.
func (f *Formatter) decorateLists(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		m := listItemPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil || num < 1 || num > len(keycaps) {
			continue
		}
		lines[i] = keycaps[num-1] + " " + m[2]
	}
	return strings.Join(lines, "\n")
}

// decorateHeaders prefixes short lines that end with a colon and name a
// known section. The first matching section keyword decides the emoji.
func (f *Formatter) decorateHeaders(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasSuffix(trimmed, ":") || len([]rune(trimmed)) >= 50 {
			continue
		}
		lower := strings.ToLower(line)
		for _, h := range f.headers {
			if !strings.Contains(lower, h.Term) {
				continue
			}
			if !strings.Contains(line, h.Emoji) {
				lines[i] = h.Emoji + " " + line
			}
			break
		}
	}
	return strings.Join(lines, "\n")
}

// FormatSuggestions renders follow-up questions as a numbered block
// appended below the answer. An empty list renders nothing.
func FormatSuggestions(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n💡 **You might also want to know:**\n")
	for i, s := range suggestions {
		if i >= 4 {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return b.String()
}

// emojiBefore reports whether the emoji appears directly before pos.
// Some emojis span multiple runes (variation selectors, ZWJ sequences),
// so the window is sized in bytes rather than a fixed rune count, with
// just enough slack for one adjacent decoration or a short word in
// between (as in "🐯 Bengal tiger"). The same emoji further up the
// sentence does not suppress a new decoration.
func emojiBefore(text string, pos int, emoji string) bool {
	start := pos - len(emoji) - 8
	if start < 0 {
		start = 0
	}
	return strings.Contains(text[start:pos], emoji)
}
