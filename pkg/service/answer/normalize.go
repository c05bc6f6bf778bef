package answer

import "strings"

// abbreviations maps casual contractions to their expanded forms. Entries
// are padded with spaces so only whole words match.
var abbreviations = [][2]string{
	{" u ", " you "},
	{" r ", " are "},
	{" pls ", " please "},
	{" plz ", " please "},
	{" info ", " information "},
	{" w/ ", " with "},
	{" w/o ", " without "},
	{" thx ", " thanks "},
	{" thnx ", " thanks "},
	{" ur ", " your "},
	{" abt ", " about "},
	{" n ", " and "},
}

// NormalizeQuery expands common abbreviations and casual contractions to
// improve retrieval relevance. It is applied only to the retrieval
// query, never to the text shown to the user or the generation prompt.
func NormalizeQuery(query string) string {
	normalized := " " + strings.ToLower(query) + " "
	for _, pair := range abbreviations {
		normalized = strings.ReplaceAll(normalized, pair[0], pair[1])
	}
	return strings.TrimSpace(normalized)
}
