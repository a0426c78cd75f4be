package search

import (
	"sort"

	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/search/result"
)

// defaultSemanticWeight is the semantic share of the fused score.
const defaultSemanticWeight = 0.7

// fuse merges semantic and keyword rankings over the candidate union with a
// weighted linear combination. A side that did not score a document
// contributes 0. Every candidate stays in the ranking, zero-scored ones
// last, so result totals always count the filtered corpus.
func fuse(
	docs []domdoc.Document,
	sem map[string]semanticMatch,
	kw map[string]float64,
	weight float64,
) []result.Result {
	if weight <= 0 || weight > 1 {
		weight = defaultSemanticWeight
	}

	results := make([]result.Result, 0, len(docs))
	for _, doc := range docs {
		match := sem[doc.ID()]
		kwScore := kw[doc.ID()]

		final := weight*match.score + (1-weight)*kwScore
		results = append(results, result.New(doc, match.score, kwScore, final, match.chunk))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore() > results[j].FinalScore()
	})
	return results
}
