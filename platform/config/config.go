// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the Redis-backed reminder queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// AssistantConfig provides settings for the in-process LLM assistant.
type AssistantConfig interface {
	GetAssistantAPIKey() string
	GetAssistantBaseURL() string
	GetAssistantModel() string
	IsAssistantEnabled() bool
}

// AgentConfig provides tuning for entity resolution and workflows.
type AgentConfig interface {
	GetFuzzyThreshold() float64
	GetCandidateLimit() int
	GetSuggestionLimit() int
	GetToolTimeout() time.Duration
	GetAgencyLocation() *time.Location
	GetDefaultLanguage() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration.
// It implements all module-specific interfaces above.
type Config struct {
	Env              string
	HTTPAddr         string
	DatabaseURL      string
	JWTAccessSecret  string
	CORSAllowAll     bool
	CORSOrigins      []string
	CORSAllowCreds   bool
	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int
	AssistantAPIKey  string
	AssistantBaseURL string
	AssistantModel   string
	FuzzyThreshold   float64
	CandidateLimit   int
	SuggestionLimit  int
	ToolTimeout      time.Duration
	AgencyTimezone   string
	DefaultLanguage  string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// AssistantConfig implementation
func (c *Config) GetAssistantAPIKey() string  { return c.AssistantAPIKey }
func (c *Config) GetAssistantBaseURL() string { return c.AssistantBaseURL }
func (c *Config) GetAssistantModel() string   { return c.AssistantModel }
func (c *Config) IsAssistantEnabled() bool    { return c.AssistantAPIKey != "" }

// AgentConfig implementation
func (c *Config) GetFuzzyThreshold() float64    { return c.FuzzyThreshold }
func (c *Config) GetCandidateLimit() int        { return c.CandidateLimit }
func (c *Config) GetSuggestionLimit() int       { return c.SuggestionLimit }
func (c *Config) GetToolTimeout() time.Duration { return c.ToolTimeout }
func (c *Config) GetDefaultLanguage() string    { return c.DefaultLanguage }
func (c *Config) GetAgencyLocation() *time.Location {
	loc, err := time.LoadLocation(c.AgencyTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := loadBase()
	if err != nil {
		return nil, err
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	return cfg, nil
}

// LoadToolServer reads the subset of configuration needed by the MCP binary
// and the scheduler worker, which expose no HTTP surface.
func LoadToolServer() (*Config, error) {
	return loadBase()
}

func loadBase() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:     corsAllowAll,
		CORSOrigins:      corsOrigins,
		CORSAllowCreds:   strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "5"), 5),
		AssistantAPIKey:  getEnv("ASSISTANT_API_KEY", ""),
		AssistantBaseURL: getEnv("ASSISTANT_BASE_URL", "https://api.moonshot.ai/v1"),
		AssistantModel:   getEnv("ASSISTANT_MODEL", "kimi-k2-turbo-preview"),
		FuzzyThreshold:   mustFloat(getEnv("AGENT_FUZZY_THRESHOLD", "0.3"), 0.3),
		CandidateLimit:   mustInt(getEnv("AGENT_CANDIDATE_LIMIT", "500"), 500),
		SuggestionLimit:  mustInt(getEnv("AGENT_SUGGESTION_LIMIT", "3"), 3),
		ToolTimeout:      mustDuration(getEnv("AGENT_TOOL_TIMEOUT", "20s"), 20*time.Second),
		AgencyTimezone:   getEnv("AGENT_TIMEZONE", "Europe/Paris"),
		DefaultLanguage:  getEnv("AGENT_DEFAULT_LANGUAGE", "fr"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.FuzzyThreshold <= 0 || cfg.FuzzyThreshold >= 1 {
		return nil, fmt.Errorf("AGENT_FUZZY_THRESHOLD must be between 0 and 1")
	}
	if cfg.CandidateLimit < 1 {
		return nil, fmt.Errorf("AGENT_CANDIDATE_LIMIT must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func mustInt(value string, fallback int) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return result
}

func mustFloat(value string, fallback float64) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
