package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tessella-io/docdex/internal/domain"
	"github.com/tessella-io/docdex/internal/repository/searchlog"
	documentuc "github.com/tessella-io/docdex/internal/usecase/document"
	searchuc "github.com/tessella-io/docdex/internal/usecase/search"
	similaruc "github.com/tessella-io/docdex/internal/usecase/similar"
	statsuc "github.com/tessella-io/docdex/internal/usecase/stats"
)

// RecentSearches reads back the rolling search log.
type RecentSearches interface {
	Recent(ctx context.Context, limit int) ([]searchlog.Entry, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker probes the embedding provider. Optional.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server exposes the document, search, similarity and stats services over
// HTTP.
type Server struct {
	documents *documentuc.Service
	search    *searchuc.Service
	similar   *similaruc.Service
	stats     *statsuc.Service
	recent    RecentSearches
	pinger    Pinger
	provider  HealthChecker
	logger    *zap.Logger

	errorHandlers []errorHandler
}

// errorHandler inspects an error and, if it recognizes it, writes the
// response and reports true. Handlers run in registration order.
type errorHandler func(w http.ResponseWriter, err error) bool

func NewServer(
	documents *documentuc.Service,
	search *searchuc.Service,
	similar *similaruc.Service,
	stats *statsuc.Service,
	recent RecentSearches,
	pinger Pinger,
	provider HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		documents: documents,
		search:    search,
		similar:   similar,
		stats:     stats,
		recent:    recent,
		pinger:    pinger,
		provider:  provider,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		s.sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		s.sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		s.sentinelHandler(domain.ErrInvalidCategory, http.StatusBadRequest, codeInvalidCategory),
		s.sentinelHandler(domain.ErrUnsupportedMediaType, http.StatusBadRequest, codeUnsupportedMediaType),
		s.sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// Routes registers all API routes on the given router. Middleware is wired
// by the caller so tests can mount a bare router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/upload", s.createUpload)
	r.Get("/api/upload/status/{id}", s.uploadStatus)

	r.Post("/api/search", s.runSearch)
	r.Get("/api/search/recent", s.recentSearches)

	r.Get("/api/documents", s.listDocuments)
	r.Get("/api/documents/{id}", s.getDocument)
	r.Patch("/api/documents/{id}", s.patchDocument)
	r.Delete("/api/documents/{id}", s.deleteDocument)
	r.Get("/api/documents/{id}/preview", s.previewDocument)
	r.Get("/api/documents/{id}/similar", s.similarDocuments)

	r.Get("/api/stats", s.statsTotals)
	r.Get("/api/stats/categories", s.statsCategories)
	r.Get("/api/stats/recent-uploads", s.statsRecentUploads)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

func (s *Server) createUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	doc, err := s.documents.Upload(r.Context(), documentuc.UploadRequest{
		Title:        req.Title,
		OriginalName: req.OriginalName,
		Filename:     req.Filename,
		MediaType:    req.MediaType,
		Size:         req.Size,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, uploadResponse{ID: doc.ID(), Status: doc.Status().String()})
}

func (s *Server) uploadStatus(w http.ResponseWriter, r *http.Request) {
	st, msg, err := s.documents.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: st.String(), Error: msg})
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	page, err := s.search.Search(r.Context(), searchuc.Params{
		Query:    req.Query,
		Category: req.Category,
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	hits := make([]searchHit, len(page.Results))
	for i := range page.Results {
		snippet := s.search.Snippet(page.Results[i], req.Query)
		hits[i] = resultToHit(&page.Results[i], snippet)
	}
	s.writeJSON(w, http.StatusOK, searchResponse{
		Results:    hits,
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

func (s *Server) recentSearches(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
		return
	}
	entries, err := s.recent.Recent(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out := make([]recentSearch, len(entries))
	for i, e := range entries {
		out[i] = entryToRecent(e)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "page must be an integer")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
		return
	}
	lp, err := s.documents.List(r.Context(), r.URL.Query().Get("category"), page, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	docs := make([]documentSummary, len(lp.Docs))
	for i := range lp.Docs {
		docs[i] = documentToSummary(&lp.Docs[i])
	}
	s.writeJSON(w, http.StatusOK, documentListResponse{
		Documents:  docs,
		Total:      lp.Total,
		Page:       lp.Page,
		TotalPages: lp.TotalPages,
	})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, documentToDetail(&doc))
}

func (s *Server) patchDocument(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	doc, err := s.documents.Patch(r.Context(), chi.URLParam(r, "id"), req.Title, req.Category, req.Tags)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, documentToDetail(&doc))
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) previewDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	preview, err := s.documents.Preview(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, previewResponse{ID: id, Preview: preview})
}

func (s *Server) similarDocuments(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
		return
	}
	matches, err := s.similar.Similar(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out := make([]similarHit, len(matches))
	for i, m := range matches {
		out[i] = matchToSimilar(m)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) statsTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.stats.Totals(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, totalsToDTO(totals))
}

func (s *Server) statsCategories(w http.ResponseWriter, r *http.Request) {
	counts, err := s.stats.Categories(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, categoryCountsToDTO(counts))
}

func (s *Server) statsRecentUploads(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
		return
	}
	docs, err := s.stats.RecentUploads(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out := make([]documentSummary, len(docs))
	for i := range docs {
		out[i] = documentToSummary(&docs[i])
	}
	s.writeJSON(w, http.StatusOK, out)
}

// healthz reports component health. The store is load-bearing; a provider
// failure marks the service degraded but still serving.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok", "database": "ok"}
	code := http.StatusOK

	if err := s.pinger.Ping(r.Context()); err != nil {
		body["status"] = "unhealthy"
		body["database"] = "error"
		code = http.StatusServiceUnavailable
	}
	if s.provider != nil {
		body["provider"] = "ok"
		if err := s.provider.HealthCheck(r.Context()); err != nil {
			body["provider"] = "error"
			if body["status"] == "ok" {
				body["status"] = "degraded"
			}
		}
	}

	s.writeJSON(w, code, body)
}

// sentinelHandler maps a domain sentinel to a fixed status and code, with
// the sanitized error text as the message.
func (s *Server) sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err, sentinel))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("unhandled service error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// safeDomainMessage prefers the wrapped error's own text but falls back to
// the sentinel's so internal detail never leaks through a double-wrap.
func safeDomainMessage(err, sentinel error) string {
	if msg := err.Error(); len(msg) <= 200 {
		return msg
	}
	return sentinel.Error()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Code: code, Message: message})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return n, nil
}
