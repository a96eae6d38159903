// Package config loads the salon backend configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Persistence
	StoreBackend string // memory, redis, postgres
	RedisURL     string
	DatabaseURL  string

	// Business hours
	BusinessStartHour int
	BusinessEndHour   int
	BusinessDays      []time.Weekday
	Timezone          string

	// Booking
	PaymentDelay           time.Duration
	MaxConcurrentCheckouts int
	WizardTTL              time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration

	// Cache
	AnalyticsCacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Assistant (Gemini)
	GeminiAPIKey string
	GeminiModel  string

	// Auth
	SuperAdminUsername string
	SuperAdminPassword string
	JWTSecret          string
	SessionTTL         time.Duration
	RecoveryTTL        time.Duration
}

// LoadDotEnv loads a .env file into the environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "memory")),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		BusinessStartHour: getEnvInt("BUSINESS_START_HOUR", 9),
		BusinessEndHour:   getEnvInt("BUSINESS_END_HOUR", 19),
		BusinessDays:      getEnvWeekdays("BUSINESS_DAYS", []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}),
		Timezone:          getEnv("TIMEZONE", "America/Fortaleza"),

		PaymentDelay:           getEnvDuration("PAYMENT_DELAY", 2*time.Second),
		MaxConcurrentCheckouts: getEnvInt("MAX_CONCURRENT_CHECKOUTS", 20),
		WizardTTL:              getEnvDuration("WIZARD_TTL", 30*time.Minute),

		MaxRetries:     getEnvInt("MAX_RETRIES", 5),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 200*time.Millisecond),

		AnalyticsCacheTTL: getEnvDuration("ANALYTICS_CACHE_TTL", time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		SuperAdminUsername: getEnv("SUPER_ADMIN_USERNAME", "Admin@Manu"),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", "Admin@Manu"),
		JWTSecret:          getEnv("JWT_SECRET", "lessence-default-dev-secret-change-me"),
		SessionTTL:         getEnvDuration("SESSION_TTL", 8*time.Hour),
		RecoveryTTL:        getEnvDuration("RECOVERY_TTL", 10*time.Minute),
	}
}

// Location resolves Timezone, falling back to UTC when the zone database
// does not know it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvWeekdays parses a comma-separated list of weekday numbers
// (0 = Sunday … 6 = Saturday). Any invalid entry discards the whole value.
func getEnvWeekdays(key string, fallback []time.Weekday) []time.Weekday {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var days []time.Weekday
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return fallback
		}
		days = append(days, time.Weekday(n))
	}
	return days
}
