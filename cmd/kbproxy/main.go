package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kbproxy/internal/config"
	logpkg "github.com/kailas-cloud/kbproxy/internal/logger"
	"github.com/kailas-cloud/kbproxy/internal/metrics"
	chiTransport "github.com/kailas-cloud/kbproxy/internal/transport/chi"
	"github.com/kailas-cloud/kbproxy/internal/transport/qiyu"
	"github.com/kailas-cloud/kbproxy/internal/transport/wecom"
	"github.com/kailas-cloud/kbproxy/internal/version"
	healthuc "github.com/kailas-cloud/kbproxy/internal/usecase/health"
	knowledgeuc "github.com/kailas-cloud/kbproxy/internal/usecase/knowledge"
	probeuc "github.com/kailas-cloud/kbproxy/internal/usecase/probe"
	signatureuc "github.com/kailas-cloud/kbproxy/internal/usecase/signature"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting kbproxy API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("knowledge_configured", cfg.Knowledge.AppKey != ""),
		zap.Bool("signature_configured", cfg.Signature.CorpID != ""),
	)

	// Register upstream metrics explicitly (no init())
	metrics.RegisterUpstreamMetrics()

	knowledgeClient := qiyu.NewClient(&qiyu.Config{
		AppKey:    cfg.Knowledge.AppKey,
		AppSecret: cfg.Knowledge.AppSecret,
		Logger:    logger,
	})
	wecomClient := wecom.NewClient(&wecom.Config{
		CorpID:     cfg.Signature.CorpID,
		CorpSecret: cfg.Signature.CorpSecret,
		Logger:     logger,
	})
	if !knowledgeClient.Configured() {
		logger.Warn("Knowledge credentials missing, /api/knowledge and /api/test will report errors")
	}
	if !wecomClient.Configured() {
		logger.Warn("CORP_ID/CORP_SECRET missing, /api/signature will report errors")
	}

	// Create use case services
	knowledgeSvc := knowledgeuc.New(knowledgeClient).
		WithLimits(cfg.Knowledge.MaxRecords, cfg.Knowledge.MaxResults)
	signatureSvc := signatureuc.New(wecomClient)
	probeSvc := probeuc.New(knowledgeClient)
	healthSvc := healthuc.New(knowledgeClient, wecomClient)

	// Create chi server
	server := chiTransport.NewServer(knowledgeSvc, signatureSvc, probeSvc, healthSvc, logger).
		WithErrorDetails(cfg.Debug.ErrorDetails)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error":   "internal error",
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

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("origin", r.Header.Get("Origin")),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
