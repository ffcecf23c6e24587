package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/medimirror/intake/pkg/logging"
)

// WindowStore counts hits per key within a fixed window. Implementations
// must start a fresh count when the window rolls over.
type WindowStore interface {
	// Incr records one hit for key and returns the hit count within the
	// current window.
	Incr(ctx context.Context, key string, window time.Duration) (int, error)
}

// MemoryWindowStore is the default in-process store.
type MemoryWindowStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// NewMemoryWindowStore creates an in-memory store and starts a janitor that
// evicts expired windows to prevent memory growth.
func NewMemoryWindowStore() *MemoryWindowStore {
	s := &MemoryWindowStore{entries: make(map[string]*windowEntry)}
	go s.cleanup()
	return s
}

// Incr implements WindowStore.
func (s *MemoryWindowStore) Incr(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, ok := s.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &windowEntry{resetAt: now.Add(window)}
		s.entries[key] = e
	}
	e.count++
	return e.count, nil
}

func (s *MemoryWindowStore) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for key, e := range s.entries {
			if now.After(e.resetAt) {
				delete(s.entries, key)
			}
		}
		s.mu.Unlock()
	}
}

// RateLimitConfig describes one fixed-window admission rule. Name keys the
// window store so each route class gets independent counters.
type RateLimitConfig struct {
	Name   string
	Window time.Duration
	Max    int
}

// RateLimit rejects requests beyond Max per Window per client IP with 429
// and a retryAfter hint equal to the window. Requests over the ceiling are
// never queued. Store errors fail open: admission control should not take
// the API down with it.
func RateLimit(cfg RateLimitConfig, store WindowStore, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	retryAfter := int(cfg.Window / time.Second)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// RealIP middleware has already folded proxy headers into
			// RemoteAddr; an explicit X-Real-Ip still wins for tests.
			ip := r.RemoteAddr
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}

			count, err := store.Incr(r.Context(), cfg.Name+":"+ip, cfg.Window)
			if err != nil {
				logger.Error("rate limit store failure", "limiter", cfg.Name, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if count > cfg.Max {
				logger.Warn("rate limit exceeded", "limiter", cfg.Name, "ip", ip)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success":    false,
					"error":      "Too many requests. Please wait a moment before trying again.",
					"retryAfter": retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
