package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medimirror/intake/internal/config"
	httpmiddleware "github.com/medimirror/intake/internal/http/middleware"
	"github.com/medimirror/intake/internal/intake"
	"github.com/medimirror/intake/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	IntakeHandler      *intake.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimitStore backs all fixed windows; defaults to in-memory.
	RateLimitStore httpmiddleware.WindowStore

	// Admission ceilings per route class.
	APILimit       httpmiddleware.RateLimitConfig
	ChatLimit      httpmiddleware.RateLimitConfig
	DiagnosisLimit httpmiddleware.RateLimitConfig
}

// FromAppConfig builds the limiter settings from application config.
func FromAppConfig(cfg *config.Config) (api, chat, diagnosis httpmiddleware.RateLimitConfig) {
	api = httpmiddleware.RateLimitConfig{Name: "api", Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax}
	chat = httpmiddleware.RateLimitConfig{Name: "chat", Window: cfg.ChatRateLimitWindow, Max: cfg.ChatRateLimitMax}
	diagnosis = httpmiddleware.RateLimitConfig{Name: "diagnosis", Window: cfg.DiagnosisRateLimitWindow, Max: cfg.DiagnosisRateLimitMax}
	return api, chat, diagnosis
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	store := cfg.RateLimitStore
	if store == nil {
		store = httpmiddleware.NewMemoryWindowStore()
	}
	fillLimitDefaults(cfg)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Liveness and metrics stay outside every rate limit.
	r.Get("/health", cfg.IntakeHandler.Liveness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API routes: a general ceiling on everything, stricter ones on the
	// expensive model-backed calls. Rejection is immediate, never queued.
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.RateLimit(cfg.APILimit, store, cfg.Logger))

		api.Get("/health", cfg.IntakeHandler.Health)

		api.With(httpmiddleware.RateLimit(cfg.ChatLimit, store, cfg.Logger)).
			Post("/chat", cfg.IntakeHandler.Chat)

		api.With(httpmiddleware.RateLimit(cfg.DiagnosisLimit, store, cfg.Logger)).
			Post("/diagnosis", cfg.IntakeHandler.Diagnosis)
	})

	return r
}

func fillLimitDefaults(cfg *Config) {
	if cfg.APILimit.Max == 0 {
		cfg.APILimit = httpmiddleware.RateLimitConfig{Name: "api", Window: time.Minute, Max: 15}
	}
	if cfg.ChatLimit.Max == 0 {
		cfg.ChatLimit = httpmiddleware.RateLimitConfig{Name: "chat", Window: time.Minute, Max: 10}
	}
	if cfg.DiagnosisLimit.Max == 0 {
		cfg.DiagnosisLimit = httpmiddleware.RateLimitConfig{Name: "diagnosis", Window: 5 * time.Minute, Max: 5}
	}
}
