// Package result defines the ephemeral search hit produced by the hybrid ranker.
package result

import domdoc "github.com/tessella-io/docdex/internal/domain/document"

// Result is a single search hit. Scores live in [0,1]; the keyword score is
// only comparable within the result set of the query that produced it.
type Result struct {
	doc           domdoc.Document
	semanticScore float64
	keywordScore  float64
	finalScore    float64
	matchedChunk  *domdoc.Chunk
}

// New creates a search result.
func New(
	doc domdoc.Document, semanticScore, keywordScore, finalScore float64,
	matchedChunk *domdoc.Chunk,
) Result {
	return Result{
		doc:           doc,
		semanticScore: semanticScore,
		keywordScore:  keywordScore,
		finalScore:    finalScore,
		matchedChunk:  matchedChunk,
	}
}

// Document returns the matched document snapshot.
func (r *Result) Document() domdoc.Document { return r.doc }

// SemanticScore returns the best chunk cosine similarity, 0 when the document
// had no embedded chunks.
func (r *Result) SemanticScore() float64 { return r.semanticScore }

// KeywordScore returns the normalized TF-IDF score within this query's
// candidate set.
func (r *Result) KeywordScore() float64 { return r.keywordScore }

// FinalScore returns the fused ranking score.
func (r *Result) FinalScore() float64 { return r.finalScore }

// MatchedChunk returns the best-matching chunk for snippet generation,
// nil when the hit came from keyword relevance alone.
func (r *Result) MatchedChunk() *domdoc.Chunk { return r.matchedChunk }
