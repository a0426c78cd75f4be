package process

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tessella-io/docdex/internal/domain"
)

// fallbackKeywordCount is how many keywords the local heuristic extracts;
// fallbackBulletCount bounds the bullets of a locally built summary.
const (
	fallbackKeywordCount = 5
	fallbackBulletCount  = 3
)

// stopwords excluded from local keyword extraction.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "in": {},
	"is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "that": {},
	"the": {}, "this": {}, "to": {}, "was": {}, "were": {}, "will": {},
	"with": {}, "which": {}, "their": {}, "they": {}, "been": {}, "but": {},
	"not": {}, "can": {}, "all": {}, "also": {}, "these": {}, "than": {},
	"then": {}, "them": {}, "there": {}, "when": {}, "into": {}, "more": {},
	"other": {}, "such": {}, "only": {}, "some": {}, "would": {}, "about": {},
}

// localSummary builds a summary when the provider is unavailable: the first
// two sentences as the short form, top terms as bullets.
func localSummary(text string) domain.Summary {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Summary{Short: "No content available for summarization."}
	}

	sentences := splitSentences(text)
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}
	return domain.Summary{
		Short:   strings.Join(sentences, " "),
		Bullets: localKeywords(text, fallbackBulletCount),
	}
}

// localKeywords extracts the most frequent non-stopword terms of at least
// four characters.
func localKeywords(text string, n int) []string {
	freq := make(map[string]int)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len(w) < 4 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		freq[w]++
	}

	type wordCount struct {
		word  string
		count int
	}
	counts := make([]wordCount, 0, len(freq))
	for w, c := range freq {
		counts = append(counts, wordCount{w, c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].word < counts[j].word
	})

	if n > len(counts) {
		n = len(counts)
	}
	keywords := make([]string, 0, n)
	for _, wc := range counts[:n] {
		keywords = append(keywords, wc.word)
	}
	return keywords
}

// splitSentences cuts text on sentence terminators followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
