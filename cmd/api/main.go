package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medimirror/intake/internal/api/router"
	appconfig "github.com/medimirror/intake/internal/config"
	httpmiddleware "github.com/medimirror/intake/internal/http/middleware"
	"github.com/medimirror/intake/internal/intake"
	"github.com/medimirror/intake/internal/llm"
	"github.com/medimirror/intake/internal/observability/metrics"
	"github.com/medimirror/intake/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)

	// A missing upstream credential is fatal at startup, not at first request.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting medimirror intake API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"provider", cfg.LLMProvider,
	)

	// Model client
	client, cleanup, err := buildLLMClient(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize LLM client", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	intakeMetrics := metrics.NewIntakeMetrics(registry)

	// Rate-limit window store: Redis when configured, in-memory otherwise.
	var store httpmiddleware.WindowStore
	if cfg.RedisAddr != "" {
		redisStore := httpmiddleware.NewRedisWindowStore(httpmiddleware.RedisStoreConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TLS:      cfg.RedisTLS,
		})
		defer redisStore.Close()
		store = redisStore
		logger.Info("rate limiting backed by redis", "addr", cfg.RedisAddr)
	} else {
		store = httpmiddleware.NewMemoryWindowStore()
	}

	// Initialize service and handlers
	service := intake.NewService(client, intake.ServiceConfig{
		MaxMessageLength:  cfg.MaxMessageLength,
		DiagnosisMinTurns: cfg.DiagnosisMinTurns,
		MaxOutputTokens:   cfg.MaxOutputTokens,
	}, intakeMetrics, logger)
	handler := intake.NewHandler(service, intakeMetrics, logger)

	// Setup router
	apiLimit, chatLimit, diagnosisLimit := router.FromAppConfig(cfg)
	r := router.New(&router.Config{
		Logger:             logger,
		IntakeHandler:      handler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.ClientOrigins,
		RateLimitStore:     store,
		APILimit:           apiLimit,
		ChatLimit:          chatLimit,
		DiagnosisLimit:     diagnosisLimit,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "model", client.ModelID())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func buildLLMClient(cfg *appconfig.Config, logger *logging.Logger) (llm.Client, func(), error) {
	switch cfg.LLMProvider {
	case "gemini":
		client, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	default:
		client, err := llm.NewGitHubClient(llm.GitHubConfig{
			Token:   cfg.GitHubToken,
			BaseURL: cfg.GitHubBaseURL,
			Model:   cfg.GitHubModel,
			Timeout: cfg.APITimeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	}
}
