package domain

import "context"

// EmbeddingResult is the outcome of a single embedding call.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Summary is a short document summary with key takeaways.
type Summary struct {
	Short   string   `json:"short"`
	Bullets []string `json:"bullets"`
}

// Classification is a category assignment plus extracted keyword tags.
type Classification struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Provider is the AI collaborator capability set. Summarize and Classify
// return ErrProviderMalformedResponse when the model output fails schema
// validation; callers decide whether to fall back to local heuristics.
type Provider interface {
	Embedder
	Summarize(ctx context.Context, text string) (Summary, error)
	Classify(ctx context.Context, text string) (Classification, error)
}
