// Package domain holds docdex domain types shared across layers.
package domain

import "errors"

var (
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidQuery signals an empty search query or malformed request input.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidCategory signals a category outside the configured set.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrUnsupportedMediaType signals an upload with no registered extractor.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrInvalidTransition signals a processing status change that would regress.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrExtractionFailed signals the text extraction collaborator failed.
	// Fatal to the pipeline: the document moves to the error status.
	ErrExtractionFailed = errors.New("text extraction failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrProviderMalformedResponse signals an unparsable chat completion.
	// Recovered via local heuristics, never fatal to the pipeline.
	ErrProviderMalformedResponse = errors.New("malformed provider response")
)
