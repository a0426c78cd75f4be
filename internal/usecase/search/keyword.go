package search

import (
	"math"
	"strings"
	"unicode"

	domdoc "github.com/tessella-io/docdex/internal/domain/document"
)

// keywordScores ranks candidates by TF-IDF over title, text and tags,
// normalized into [0,1] by the best score of this candidate set. The index
// is built per request; scores are not comparable across queries.
func keywordScores(query string, docs []domdoc.Document) map[string]float64 {
	terms := tokenize(query)
	if len(terms) == 0 || len(docs) == 0 {
		return nil
	}

	// Token frequencies per document.
	tokenCounts := make([]map[string]int, len(docs))
	for i, doc := range docs {
		tokens := tokenize(doc.Title() + " " + doc.Text() + " " + strings.Join(doc.Tags(), " "))
		counts := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
		}
		tokenCounts[i] = counts
	}

	// Document frequency per query term.
	df := make(map[string]int, len(terms))
	for _, term := range terms {
		for _, counts := range tokenCounts {
			if counts[term] > 0 {
				df[term]++
			}
		}
	}

	n := float64(len(docs))
	scores := make(map[string]float64, len(docs))
	maxScore := 0.0
	for i, doc := range docs {
		var score float64
		for _, term := range terms {
			count := tokenCounts[i][term]
			if count == 0 {
				continue
			}
			// Raw term frequency; relative order is what matters since the
			// scores are normalized within this candidate set below.
			idf := math.Log(1 + n/float64(1+df[term]))
			score += float64(count) * idf
		}
		if score > 0 {
			scores[doc.ID()] = score
			if score > maxScore {
				maxScore = score
			}
		}
	}

	// Normalize by the best score, with 1 as the floor so tiny raw scores
	// are not inflated.
	denom := math.Max(maxScore, 1)
	for id, score := range scores {
		scores[id] = score / denom
	}
	return scores
}

// tokenize lower-cases and splits on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
