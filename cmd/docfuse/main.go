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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lexora-cloud/docfuse/internal/backend/docindex"
	"github.com/lexora-cloud/docfuse/internal/backend/yandex"
	"github.com/lexora-cloud/docfuse/internal/cache"
	"github.com/lexora-cloud/docfuse/internal/config"
	"github.com/lexora-cloud/docfuse/internal/doctype"
	"github.com/lexora-cloud/docfuse/internal/domain/doc"
	"github.com/lexora-cloud/docfuse/internal/extract"
	"github.com/lexora-cloud/docfuse/internal/llm"
	logpkg "github.com/lexora-cloud/docfuse/internal/logger"
	"github.com/lexora-cloud/docfuse/internal/metrics"
	chiTransport "github.com/lexora-cloud/docfuse/internal/transport/chi"
	answeruc "github.com/lexora-cloud/docfuse/internal/usecase/answer"
	healthuc "github.com/lexora-cloud/docfuse/internal/usecase/health"
	searchuc "github.com/lexora-cloud/docfuse/internal/usecase/search"
	"github.com/lexora-cloud/docfuse/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docfuse API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_url", cfg.Index.BaseURL),
	)

	// Register search pipeline metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Optional extracted-page cache
	var pageCache *cache.Pages
	if len(cfg.Cache.Addrs) > 0 {
		pageCache, err = cache.New(cache.Config{
			Addrs:     cfg.Cache.Addrs,
			Password:  cfg.Cache.Password,
			KeyPrefix: cfg.Cache.KeyPrefix,
			TTL:       time.Duration(cfg.Cache.TTLSec) * time.Second,
			Logger:    logger,
		})
		if err != nil {
			logger.Fatal("Failed to create page cache", zap.Error(err))
		}
		defer pageCache.Close()
		logger.Info("Page cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Extraction engine — proxy and user-agent resolved once, shared by all fetches.
	var extractCache extract.Cache
	if pageCache != nil {
		extractCache = pageCache
	}
	fetcher := extract.NewFetcher(extract.Config{
		Timeout:   time.Duration(cfg.Extract.TimeoutSec) * time.Second,
		UserAgent: cfg.Extract.UserAgent,
		Proxy:     cfg.Extract.Proxy,
		Cache:     extractCache,
		Logger:    logger,
	})

	// Backend adapters
	classifier := doctype.New(docTypeRules(cfg.Search.DocTypeRules, logger))

	yandexAdapter := yandex.NewAdapter(
		yandex.NewClient(yandex.ClientConfig{
			FolderID: cfg.Yandex.FolderID,
			APIKey:   cfg.Yandex.APIKey,
			Endpoint: cfg.Yandex.Endpoint,
			Timeout:  time.Duration(cfg.Yandex.TimeoutSec) * time.Second,
		}),
		fetcher, classifier, logger,
	)

	indexAdapter := docindex.NewAdapter(
		docindex.NewClient(docindex.ClientConfig{
			BaseURL:    cfg.Index.BaseURL,
			Token:      cfg.Index.Token,
			Timeout:    time.Duration(cfg.Index.TimeoutSec) * time.Second,
			MaxRetries: uint64(cfg.Index.MaxRetries),
		}),
		logger,
	)

	// Use case services
	searchSvc := searchuc.New(indexAdapter, yandexAdapter, logger)

	var answerSvc chiTransport.Answerer
	if cfg.LLM.APIKey != "" {
		gen := llm.NewOpenAI(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
		answerSvc = answeruc.New(searchSvc, gen, logger)
		logger.Info("Answer synthesis enabled", zap.String("model", cfg.LLM.Model))
	}

	healthChecks := map[string]healthuc.Pinger{}
	if pageCache != nil {
		healthChecks["cache"] = pageCache
	}
	healthSvc := healthuc.New(healthChecks)

	// HTTP server
	server := chiTransport.NewServer(searchSvc, answerSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Handle("/metrics", promhttp.Handler())
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

// docTypeRules converts configured classification overrides, skipping rules
// with unknown types.
func docTypeRules(rules []config.DocTypeRule, logger *zap.Logger) []doctype.Rule {
	out := make([]doctype.Rule, 0, len(rules))
	for _, r := range rules {
		t := doc.Type(r.Type)
		if !t.IsValid() {
			logger.Warn("skipping doc type rule with unknown type",
				zap.String("substr", r.Substr), zap.String("type", r.Type))
			continue
		}
		out = append(out, doctype.Rule{Substr: r.Substr, Type: t})
	}
	return out
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
						"error": "internal error",
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
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
