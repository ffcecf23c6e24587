package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	ClientOrigins []string

	// Upstream LLM provider
	LLMProvider     string // "github" (OpenAI-compatible) or "gemini"
	GitHubToken     string
	GitHubBaseURL   string
	GitHubModel     string
	GeminiAPIKey    string
	GeminiModel     string
	APITimeout      time.Duration
	MaxOutputTokens int

	// Request validation
	MaxMessageLength  int
	DiagnosisMinTurns int

	// Rate limiting (fixed windows, per client IP)
	RateLimitWindow          time.Duration
	RateLimitMax             int
	ChatRateLimitWindow      time.Duration
	ChatRateLimitMax         int
	DiagnosisRateLimitWindow time.Duration
	DiagnosisRateLimitMax    int

	// Optional Redis-backed rate-limit windows (shared across replicas)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "5000"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ClientOrigins: splitCSV(getEnv("CLIENT_ORIGINS", "http://localhost:5173")),

		LLMProvider:     strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "github"))),
		GitHubToken:     getEnv("GITHUB_TOKEN", ""),
		GitHubBaseURL:   getEnv("GITHUB_MODELS_BASE_URL", "https://models.inference.ai.azure.com"),
		GitHubModel:     getEnv("GITHUB_MODEL", "gpt-4o"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		APITimeout:      getEnvAsDuration("API_TIMEOUT", 30*time.Second),
		MaxOutputTokens: getEnvAsInt("MAX_OUTPUT_TOKENS", 2048),

		MaxMessageLength:  getEnvAsInt("MAX_MESSAGE_LENGTH", 1000),
		DiagnosisMinTurns: getEnvAsInt("DIAGNOSIS_MIN_TURNS", 2),

		RateLimitWindow:          getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMax:             getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 15),
		ChatRateLimitWindow:      getEnvAsDuration("CHAT_RATE_LIMIT_WINDOW", time.Minute),
		ChatRateLimitMax:         getEnvAsInt("CHAT_RATE_LIMIT_MAX_REQUESTS", 10),
		DiagnosisRateLimitWindow: getEnvAsDuration("DIAGNOSIS_RATE_LIMIT_WINDOW", 5*time.Minute),
		DiagnosisRateLimitMax:    getEnvAsInt("DIAGNOSIS_RATE_LIMIT_MAX_REQUESTS", 5),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
	}
}

// Validate reports startup-time configuration errors. A missing upstream
// credential is fatal here rather than surfacing on the first request.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "github":
		if strings.TrimSpace(c.GitHubToken) == "" {
			return errors.New("config: GITHUB_TOKEN is not set")
		}
	case "gemini":
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return errors.New("config: GEMINI_API_KEY is not set")
		}
	default:
		return errors.New("config: LLM_PROVIDER must be \"github\" or \"gemini\"")
	}
	if c.MaxMessageLength <= 0 {
		return errors.New("config: MAX_MESSAGE_LENGTH must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
