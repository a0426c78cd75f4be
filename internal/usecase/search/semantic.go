package search

import (
	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/vector"
)

// semanticMatch is a document's best chunk against the query vector.
type semanticMatch struct {
	score float64
	chunk *domdoc.Chunk
}

// semanticMatches scores each candidate by the maximum cosine similarity of
// its embedded chunks against the query vector and remembers the best chunk.
// Documents with no embedded chunks are left out entirely.
func semanticMatches(query []float32, docs []domdoc.Document) map[string]semanticMatch {
	matches := make(map[string]semanticMatch, len(docs))
	for _, doc := range docs {
		chunks := doc.Chunks()
		best := semanticMatch{}
		found := false
		for i := range chunks {
			if chunks[i].Embedding == nil {
				continue
			}
			score := vector.Cosine(query, chunks[i].Embedding)
			if !found || score > best.score {
				best = semanticMatch{score: score, chunk: &chunks[i]}
				found = true
			}
		}
		if found {
			matches[doc.ID()] = best
		}
	}
	return matches
}
