package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/tessella-io/docdex/internal/domain"
	"github.com/tessella-io/docdex/internal/metrics"
)

// Caps applied to model output after validation; models routinely overshoot
// the counts the prompts ask for.
const (
	maxSummaryBullets = 3
	maxClassifyTags   = 5
)

// Provider talks to an OpenAI-compatible API (e.g. Nebius) for embeddings,
// summarization and classification.
type Provider struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
	chatModel      string
	dimensions     int
	provider       string
	categories     []string
	logger         *zap.Logger
}

// Config holds the AI provider settings.
type Config struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Dimensions     int
	Provider       string
	Categories     []string
	Logger         *zap.Logger
}

// New creates an OpenAI-compatible provider.
func New(cfg *Config) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client:         openai.NewClientWithConfig(clientCfg),
		embeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		chatModel:      cfg.ChatModel,
		dimensions:     cfg.Dimensions,
		provider:       cfg.Provider,
		categories:     cfg.Categories,
		logger:         cfg.Logger,
	}
}

// Embed implements domain.Embedder. Returns the vector and usage with transport-level metrics.
func (p *Provider) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          p.embeddingModel,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if p.dimensions > 0 {
		req.Dimensions = p.dimensions
	}

	start := time.Now()

	resp, err := p.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	model := string(p.embeddingModel)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(p.provider, model, "embed", "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(p.provider, model, "embed", "api_error").Inc()
		return domain.EmbeddingResult{}, parseAPIError("embedding", err)
	}

	if len(resp.Data) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(p.provider, model, "embed", "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(p.provider, model, "embed", "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(p.provider, model, "embed", "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(p.provider, model, "embed").Observe(duration.Seconds())

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// Summarize implements domain.Provider. The model output must be a JSON
// object with a non-empty "short" field; anything else is reported as
// domain.ErrProviderMalformedResponse so the caller can fall back locally.
func (p *Provider) Summarize(ctx context.Context, text string) (domain.Summary, error) {
	raw, err := p.chat(ctx, "summarize", summarySystemPrompt, summaryUserPrompt(text))
	if err != nil {
		return domain.Summary{}, err
	}

	var summary domain.Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		metrics.ProviderErrorsTotal.WithLabelValues(p.provider, p.chatModel, "summarize", "malformed_response").Inc()
		return domain.Summary{}, fmt.Errorf("summary response is not valid JSON: %w", domain.ErrProviderMalformedResponse)
	}
	if strings.TrimSpace(summary.Short) == "" {
		metrics.ProviderErrorsTotal.WithLabelValues(p.provider, p.chatModel, "summarize", "malformed_response").Inc()
		return domain.Summary{}, fmt.Errorf("summary response missing short text: %w", domain.ErrProviderMalformedResponse)
	}
	if len(summary.Bullets) > maxSummaryBullets {
		summary.Bullets = summary.Bullets[:maxSummaryBullets]
	}
	return summary, nil
}

// Classify implements domain.Provider. The model output must be a JSON
// object with a "category" string and a "tags" array of strings.
func (p *Provider) Classify(ctx context.Context, text string) (domain.Classification, error) {
	raw, err := p.chat(ctx, "classify", classifySystemPrompt(p.categories), classifyUserPrompt(text))
	if err != nil {
		return domain.Classification{}, err
	}

	var cls domain.Classification
	if err := json.Unmarshal([]byte(raw), &cls); err != nil {
		metrics.ProviderErrorsTotal.WithLabelValues(p.provider, p.chatModel, "classify", "malformed_response").Inc()
		return domain.Classification{}, fmt.Errorf("classification response is not valid JSON: %w", domain.ErrProviderMalformedResponse)
	}
	if strings.TrimSpace(cls.Category) == "" {
		metrics.ProviderErrorsTotal.WithLabelValues(p.provider, p.chatModel, "classify", "malformed_response").Inc()
		return domain.Classification{}, fmt.Errorf("classification response missing category: %w", domain.ErrProviderMalformedResponse)
	}
	if len(cls.Tags) > maxClassifyTags {
		cls.Tags = cls.Tags[:maxClassifyTags]
	}
	return cls, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// chat performs a single chat completion and returns the trimmed content of
// the first choice with markdown code fences stripped.
func (p *Provider) chat(ctx context.Context, operation, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.chatModel,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(p.provider, p.chatModel, operation, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(p.provider, p.chatModel, operation, "api_error").Inc()
		return "", parseAPIError(operation, err)
	}

	if len(resp.Choices) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(p.provider, p.chatModel, operation, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(p.provider, p.chatModel, operation, "empty_response").Inc()
		return "", fmt.Errorf("empty %s response: %w", operation, domain.ErrProviderMalformedResponse)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(p.provider, p.chatModel, operation, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(p.provider, p.chatModel, operation).Observe(duration.Seconds())

	return stripCodeFences(resp.Choices[0].Message.Content), nil
}

// stripCodeFences removes a surrounding markdown code block, which some
// models emit even when told to answer with bare JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEmbeddingProviderError for correct 502 mapping.
func parseAPIError(operation string, err error) error {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("%s API error %d: %s: %w",
				operation, reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("%s API error %d: %s: %w",
			operation, reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w",
			operation, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("%s request failed: %w", operation, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
