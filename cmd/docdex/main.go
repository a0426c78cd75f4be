package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tessella-io/docdex/internal/config"
	dbRedis "github.com/tessella-io/docdex/internal/db/redis"
	"github.com/tessella-io/docdex/internal/domain/document/category"
	logpkg "github.com/tessella-io/docdex/internal/logger"
	"github.com/tessella-io/docdex/internal/metrics"
	documentrepo "github.com/tessella-io/docdex/internal/repository/document"
	"github.com/tessella-io/docdex/internal/repository/searchlog"
	chiTransport "github.com/tessella-io/docdex/internal/transport/chi"
	"github.com/tessella-io/docdex/internal/transport/extract"
	openaiProvider "github.com/tessella-io/docdex/internal/transport/openai"
	documentuc "github.com/tessella-io/docdex/internal/usecase/document"
	processuc "github.com/tessella-io/docdex/internal/usecase/process"
	searchuc "github.com/tessella-io/docdex/internal/usecase/search"
	similaruc "github.com/tessella-io/docdex/internal/usecase/similar"
	statsuc "github.com/tessella-io/docdex/internal/usecase/stats"
	"github.com/tessella-io/docdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	if err := os.MkdirAll(cfg.Processing.UploadsDir, 0o755); err != nil {
		logger.Fatal("Failed to create uploads directory", zap.Error(err))
	}

	categories := category.NewSet(cfg.Categories)

	provider := openaiProvider.New(&openaiProvider.Config{
		APIKey:         cfg.Provider.APIKey,
		BaseURL:        cfg.Provider.BaseURL,
		EmbeddingModel: cfg.Provider.EmbeddingModel,
		ChatModel:      cfg.Provider.ChatModel,
		Dimensions:     cfg.Provider.Dimensions,
		Provider:       cfg.Provider.Name,
		Categories:     categories.Names(),
		Logger:         logger,
	})
	logger.Info("Provider created",
		zap.String("provider", cfg.Provider.Name),
		zap.String("embedding_model", cfg.Provider.EmbeddingModel),
		zap.String("chat_model", cfg.Provider.ChatModel),
	)

	extractors := extract.NewRegistry(cfg.Processing.TesseractBinary, logger)

	// Create repositories (domain-native, no adapters)
	docRepo := documentrepo.New(store, cfg.Storage.KeyPrefix)
	searchLogRepo := searchlog.New(store, cfg.Storage.KeyPrefix, cfg.Search.RecentLogSize)

	// Create use case services
	processSvc := processuc.New(docRepo, provider, extractors, categories, processuc.Config{
		ChunkSize:      cfg.Processing.ChunkSize,
		ChunkOverlap:   cfg.Processing.ChunkOverlap,
		EmbedDelay:     time.Duration(cfg.Processing.EmbedDelayMS) * time.Millisecond,
		EmbedMaxChars:  cfg.Processing.EmbedMaxChars,
		PromptMaxChars: cfg.Processing.PromptMaxChars,
	}, logger)

	queue, err := processuc.NewQueue(cfg.Processing.Workers, logger)
	if err != nil {
		logger.Fatal("Failed to create processing queue", zap.Error(err))
	}
	defer queue.Close()

	docSvc := documentuc.New(
		docRepo, processSvc, queue, extractors,
		categories, cfg.Processing.UploadsDir, logger,
	).WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)
	searchSvc := searchuc.New(docRepo, provider, searchLogRepo, searchuc.Config{
		SemanticWeight:  cfg.Search.SemanticWeight,
		SnippetLength:   cfg.Search.SnippetLength,
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	}, logger)
	similarSvc := similaruc.New(docRepo)
	statsSvc := statsuc.New(docRepo, searchLogRepo)

	// Create chi server
	server := chiTransport.NewServer(docSvc, searchSvc, similarSvc, statsSvc, searchLogRepo, store, provider, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
