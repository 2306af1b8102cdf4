package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/saarthi/loan-assistant-go/internal/agents"
	"github.com/saarthi/loan-assistant-go/internal/config"
	"github.com/saarthi/loan-assistant-go/internal/extract"
	"github.com/saarthi/loan-assistant-go/internal/handler"
	"github.com/saarthi/loan-assistant-go/internal/infra/cache"
	"github.com/saarthi/loan-assistant-go/internal/infra/llm"
	"github.com/saarthi/loan-assistant-go/internal/infra/observability"
	"github.com/saarthi/loan-assistant-go/internal/infra/resilience"
	"github.com/saarthi/loan-assistant-go/internal/infra/store"
	"github.com/saarthi/loan-assistant-go/internal/port"
	"github.com/saarthi/loan-assistant-go/internal/service"
	"github.com/saarthi/loan-assistant-go/internal/session"
)

func main() {
	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("groq_model", cfg.GroqModel),
		zap.Bool("llm_extraction", cfg.LLMExtraction),
		zap.Duration("session_timeout", cfg.SessionTimeout),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "saarthi-loan-assistant")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("groq")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Groq client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	groq := llm.NewGroqClient(httpClient, cfg.GroqAPIURL, cfg.GroqAPIKey, cfg.GroqModel,
		cb, resilienceCfg, bulkhead, metrics)

	// --- Extraction ---
	var extractor port.Extractor = extract.NewPatternExtractor()
	if cfg.LLMExtraction {
		logger.Info("LLM extraction enabled")
		extractor = extract.NewHybridExtractor(
			extract.NewPatternExtractor(),
			extract.NewLLMExtractor(groq, logger),
		)
	}

	// --- Sessions ---
	sessions := session.NewStore(cfg.SessionTimeout, cfg.SweepInterval, logger)
	defer sessions.Close()

	// --- Loan pipeline collaborators ---
	scoreCache := cache.New[int](cfg.CacheTTL)
	defer scoreCache.Close()

	issuer, err := agents.NewLetterIssuer(cfg.SanctionDir, logger)
	if err != nil {
		logger.Fatal("failed to init sanction issuer", zap.Error(err))
	}
	pipeline := service.NewPipelineRunner(
		agents.NewCRMVerifier(logger),
		agents.NewRuleUnderwriter(agents.NewStubCreditBureau(), scoreCache, metrics, logger),
		issuer,
		metrics,
		logger,
	)

	// --- User store ---
	users, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open user store", zap.Error(err))
	}
	defer users.Close()

	// --- Services ---
	chatSvc := service.NewChatService(sessions, extractor, groq, pipeline, metrics, logger)
	authSvc := service.NewAuthService(users, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	docSvc, err := service.NewDocumentService(cfg.UploadDir, logger)
	if err != nil {
		logger.Fatal("failed to init document service", zap.Error(err))
	}

	// --- Router ---
	router := handler.NewRouter(chatSvc, authSvc, docSvc, users, metrics,
		cfg.SanctionDir, cfg.AllowedOrigins, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
