package search

import (
	"regexp"
	"strings"
)

// defaultSnippetLength bounds snippet size in runes, excluding markup.
const defaultSnippetLength = 300

// Snippet cuts a window of text around the first query term occurrence and
// wraps every term occurrence in <mark> tags (case-insensitive). Ellipses
// mark truncation on either side.
func Snippet(text, query string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = defaultSnippetLength
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}

	terms := strings.Fields(strings.ToLower(query))
	runes := []rune(text)

	start := 0
	if idx := firstMatch(text, terms); idx > 0 {
		// Center-ish the window on the first hit.
		start = idx - maxLen/3
		if start < 0 {
			start = 0
		}
	}
	end := start + maxLen
	if end > len(runes) {
		end = len(runes)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := string(runes[start:end])
	snippet = highlight(snippet, terms)

	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

// firstMatch returns the rune index of the earliest term occurrence, -1 when
// no term appears.
func firstMatch(text string, terms []string) int {
	lower := strings.ToLower(text)
	best := -1
	for _, term := range terms {
		if i := strings.Index(lower, term); i >= 0 && (best == -1 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return -1
	}
	// Byte offset to rune offset.
	return len([]rune(lower[:best]))
}

// highlight wraps each term occurrence in <mark> tags.
func highlight(s string, terms []string) string {
	if len(terms) == 0 {
		return s
	}
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		return s
	}
	re, err := regexp.Compile("(?i)(" + strings.Join(quoted, "|") + ")")
	if err != nil {
		return s
	}
	return re.ReplaceAllString(s, "<mark>$1</mark>")
}
