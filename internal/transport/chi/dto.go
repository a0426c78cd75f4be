package chi

import (
	"time"

	"github.com/tessella-io/docdex/internal/domain"
	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/search/result"
	"github.com/tessella-io/docdex/internal/repository/searchlog"
	"github.com/tessella-io/docdex/internal/usecase/similar"
	"github.com/tessella-io/docdex/internal/usecase/stats"
)

// Error codes returned to API clients.
const (
	codeBadRequest           = "bad_request"
	codeDocumentNotFound     = "document_not_found"
	codeInvalidQuery         = "invalid_query"
	codeInvalidCategory      = "invalid_category"
	codeUnsupportedMediaType = "unsupported_media_type"
	codeProviderError        = "embedding_provider_error"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type uploadRequest struct {
	Title        string `json:"title"`
	OriginalName string `json:"originalName"`
	Filename     string `json:"filename"`
	MediaType    string `json:"mediaType"`
	Size         int64  `json:"size"`
}

type uploadResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type summaryDTO struct {
	Short   string   `json:"short"`
	Bullets []string `json:"bullets,omitempty"`
}

// documentSummary is the listing shape: no text, no chunks.
type documentSummary struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	OriginalName string     `json:"originalName"`
	MediaType    string     `json:"mediaType"`
	Size         int64      `json:"size"`
	UploadDate   time.Time  `json:"uploadDate"`
	Category     string     `json:"category"`
	Tags         []string   `json:"tags"`
	Status       string     `json:"status"`
	Summary      summaryDTO `json:"summary"`
}

// documentDetail adds the extracted text and chunk count; chunk embeddings
// never leave the service.
type documentDetail struct {
	documentSummary
	Text       string `json:"text"`
	ChunkCount int    `json:"chunkCount"`
	Error      string `json:"error,omitempty"`
}

type documentListResponse struct {
	Documents  []documentSummary `json:"documents"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

type previewResponse struct {
	ID      string `json:"id"`
	Preview string `json:"preview"`
}

type patchRequest struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

type searchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

type searchHit struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Snippet       string     `json:"snippet"`
	Summary       summaryDTO `json:"summary"`
	Tags          []string   `json:"tags"`
	Category      string     `json:"category"`
	UploadDate    time.Time  `json:"uploadDate"`
	Score         float64    `json:"score"`
	SemanticScore float64    `json:"semanticScore"`
	KeywordScore  float64    `json:"keywordScore"`
}

type searchResponse struct {
	Results    []searchHit `json:"results"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
}

type recentSearch struct {
	Query        string    `json:"query"`
	Timestamp    time.Time `json:"timestamp"`
	ResultsCount int       `json:"resultsCount"`
	Category     string    `json:"category,omitempty"`
}

type similarHit struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Category string     `json:"category"`
	Summary  summaryDTO `json:"summary"`
	Score    float64    `json:"score"`
}

type statsTotals struct {
	Documents      int   `json:"documents"`
	Searches       int64 `json:"searches"`
	StorageBytes   int64 `json:"storageBytes"`
	CategoriesUsed int   `json:"categoriesUsed"`
}

type categoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

func summaryToDTO(s domain.Summary) summaryDTO {
	return summaryDTO{Short: s.Short, Bullets: s.Bullets}
}

func documentToSummary(d *domdoc.Document) documentSummary {
	tags := d.Tags()
	if tags == nil {
		tags = []string{}
	}
	return documentSummary{
		ID:           d.ID(),
		Title:        d.Title(),
		OriginalName: d.OriginalName(),
		MediaType:    d.MediaType(),
		Size:         d.Size(),
		UploadDate:   d.UploadDate(),
		Category:     d.Category(),
		Tags:         tags,
		Status:       d.Status().String(),
		Summary:      summaryToDTO(d.Summary()),
	}
}

func documentToDetail(d *domdoc.Document) documentDetail {
	return documentDetail{
		documentSummary: documentToSummary(d),
		Text:            d.Text(),
		ChunkCount:      len(d.Chunks()),
		Error:           d.ErrorMessage(),
	}
}

func resultToHit(r *result.Result, snippet string) searchHit {
	doc := r.Document()
	s := documentToSummary(&doc)
	return searchHit{
		ID:            s.ID,
		Title:         s.Title,
		Snippet:       snippet,
		Summary:       s.Summary,
		Tags:          s.Tags,
		Category:      s.Category,
		UploadDate:    s.UploadDate,
		Score:         r.FinalScore(),
		SemanticScore: r.SemanticScore(),
		KeywordScore:  r.KeywordScore(),
	}
}

func entryToRecent(e searchlog.Entry) recentSearch {
	return recentSearch{
		Query:        e.Query,
		Timestamp:    e.Timestamp,
		ResultsCount: e.ResultsCount,
		Category:     e.Category,
	}
}

func matchToSimilar(m similar.Match) similarHit {
	return similarHit{
		ID:       m.Doc.ID(),
		Title:    m.Doc.Title(),
		Category: m.Doc.Category(),
		Summary:  summaryToDTO(m.Doc.Summary()),
		Score:    m.Score,
	}
}

func totalsToDTO(t stats.Totals) statsTotals {
	return statsTotals{
		Documents:      t.Documents,
		Searches:       t.Searches,
		StorageBytes:   t.StorageBytes,
		CategoriesUsed: t.CategoriesUsed,
	}
}

func categoryCountsToDTO(counts []stats.CategoryCount) []categoryCount {
	out := make([]categoryCount, len(counts))
	for i, c := range counts {
		out[i] = categoryCount{Category: c.Category, Count: c.Count}
	}
	return out
}
