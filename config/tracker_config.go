package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Storage
	DatabaseURL   string
	RedisURL      string
	MongoDBURL    string
	MongoDBName   string
	AutoMigrate   bool
	DBMaxOpenConn int
	DBMaxIdleConn int

	// Auth
	JWTSecret   string
	JWTTTL      time.Duration
	RequireAuth bool

	// OpenAI
	OpenAIAPIKey   string
	LLMModel       string
	LLMTemperature float64
	LLMTimeoutSec  int

	// Job search
	AdzunaAppID    string
	AdzunaAppKey   string
	AdzunaBaseURL  string
	JoobleAPIKey   string
	JoobleHost     string
	SearchCacheTTL time.Duration

	// Mail
	MailProvider      string // smtp | gmail | log
	MailFrom          string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string

	// HTTP
	AllowedOrigins  []string
	RateLimitPerMin int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Storage
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		MongoDBURL:    getEnv("MONGODB_URL", ""),
		MongoDBName:   getEnv("MONGODB_DATABASE", "jobtrackr"),
		AutoMigrate:   getEnvBool("AUTO_MIGRATE", false),
		DBMaxOpenConn: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConn: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		// Auth
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTL:      time.Duration(getEnvInt("JWT_TTL_MIN", 60)) * time.Minute,
		RequireAuth: getEnvBool("REQUIRE_AUTH", false),

		// OpenAI
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o"),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeoutSec:  getEnvInt("LLM_TIMEOUT_SEC", 60),

		// Job search
		AdzunaAppID:    getEnv("ADZUNA_APP_ID", ""),
		AdzunaAppKey:   getEnv("ADZUNA_APP_KEY", getEnv("APP_KEY", "")),
		AdzunaBaseURL:  getEnv("ADZUNA_BASE_URL", "https://api.adzuna.com/v1/api/jobs"),
		JoobleAPIKey:   getEnv("JOOBLE_API_KEY", ""),
		JoobleHost:     getEnv("JOOBLE_HOST", "jooble.org"),
		SearchCacheTTL: time.Duration(getEnvInt("SEARCH_CACHE_TTL_SEC", 600)) * time.Second,

		// Mail
		MailProvider:      getEnv("MAIL_PROVIDER", "log"),
		MailFrom:          getEnv("MAIL_FROM", ""),
		SMTPHost:          getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		// HTTP
		AllowedOrigins:  getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 20),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	return cfg, nil
}

// ValidateAPI checks the settings only the HTTP server needs.
func (c *Config) ValidateAPI() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
