package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Redis         RedisConfig
	Tavily        TavilyConfig
	OpenAI        OpenAIConfig
	Auth          AuthConfig
	Investigation InvestigationConfig
	OTEL          OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TavilyConfig holds web search provider configuration.
// An empty APIKey puts the evidence retriever in mock mode.
type TavilyConfig struct {
	APIKey     string
	BaseURL    string
	MaxResults int
}

// OpenAIConfig holds judge/narrative provider configuration.
// An empty APIKey puts the judgement engine in mock mode.
type OpenAIConfig struct {
	APIKey         string
	Model          string
	RateLimitRPM   int
	RateLimitBurst int
}

// AuthConfig holds admin authentication configuration
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
	CookieSecure  bool
}

// InvestigationConfig holds pipeline tuning knobs
type InvestigationConfig struct {
	MaxSearchGroups int
	CallTimeout     time.Duration
	ProgressTTL     time.Duration
	PollInterval    time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Tavily: TavilyConfig{
			APIKey:     getEnv("TAVILY_API_KEY", ""),
			BaseURL:    getEnv("TAVILY_BASE_URL", "https://api.tavily.com"),
			MaxResults: getEnvAsInt("TAVILY_MAX_RESULTS", 100),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 5),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
			TokenTTL:      getEnvAsDuration("AUTH_TOKEN_TTL", 24*time.Hour),
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "0000"),
			CookieSecure:  getEnvAsBool("AUTH_COOKIE_SECURE", false),
		},
		Investigation: InvestigationConfig{
			MaxSearchGroups: getEnvAsInt("INVESTIGATION_MAX_SEARCH_GROUPS", 7),
			CallTimeout:     getEnvAsDuration("INVESTIGATION_CALL_TIMEOUT", 30*time.Second),
			ProgressTTL:     getEnvAsDuration("INVESTIGATION_PROGRESS_TTL", 24*time.Hour),
			PollInterval:    getEnvAsDuration("INVESTIGATION_POLL_INTERVAL", time.Second),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "modelaudit"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
