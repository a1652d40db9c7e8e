package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr      = ":8080"
	defaultDatabaseURL   = "nexus.db"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTTTL        = "720h"
	defaultTMDBBaseURL   = "https://api.themoviedb.org/3"
	defaultTMDBImageURL  = "https://image.tmdb.org/t/p"
	defaultTMDBLanguage  = "en-US"
	defaultTMDBPages     = "5"
	defaultTMDBRPS       = "4"
	defaultTMDBTimeout   = "10s"
	defaultSMTPPort      = "587"
	defaultSMTPFrom      = "noreply@nexus.local"
	defaultLogLevel      = "info"
	defaultLogFormat     = "json"
	defaultCacheEnabled  = "true"
	defaultSMTPUseTLS    = "true"
	defaultShutdownDelay = "10s"
)

type Config struct {
	AppEnv          string
	HTTPAddr        string
	DatabaseURL     string
	ShutdownTimeout time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	TMDB TMDBConfig

	IngestSchedule string

	SMTP SMTPConfig

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	CacheEnabled bool
}

type TMDBConfig struct {
	APIKey            string
	BaseURL           string
	ImageBaseURL      string
	Language          string
	Pages             int
	RequestsPerSecond float64
	Timeout           time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.IngestSchedule = strings.TrimSpace(os.Getenv("INGEST_SCHEDULE"))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat)))
	cfg.CacheEnabled = parseBoolEnv("CACHE_ENABLED", defaultCacheEnabled)
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay)
	if err != nil {
		return nil, err
	}

	cfg.TMDB = TMDBConfig{
		APIKey:       strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		BaseURL:      strings.TrimRight(strings.TrimSpace(getEnv("TMDB_BASE_URL", defaultTMDBBaseURL)), "/"),
		ImageBaseURL: strings.TrimRight(strings.TrimSpace(getEnv("TMDB_IMAGE_BASE_URL", defaultTMDBImageURL)), "/"),
		Language:     strings.TrimSpace(getEnv("TMDB_LANGUAGE", defaultTMDBLanguage)),
	}
	if cfg.TMDB.Pages, err = parseIntEnv("TMDB_PAGES", defaultTMDBPages); err != nil {
		return nil, err
	}
	if cfg.TMDB.RequestsPerSecond, err = parseFloatEnv("TMDB_RPS", defaultTMDBRPS); err != nil {
		return nil, err
	}
	if cfg.TMDB.Timeout, err = parseDurationEnv("TMDB_TIMEOUT", defaultTMDBTimeout); err != nil {
		return nil, err
	}

	cfg.SMTP = SMTPConfig{
		Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		Username: strings.TrimSpace(os.Getenv("SMTP_USER")),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     strings.TrimSpace(getEnv("SMTP_FROM", defaultSMTPFrom)),
		UseTLS:   parseBoolEnv("SMTP_USE_TLS", defaultSMTPUseTLS),
	}
	if cfg.SMTP.Port, err = parseIntEnv("SMTP_PORT", defaultSMTPPort); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if cfg.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be > 0")
	}
	if cfg.TMDB.Pages < 1 {
		return fmt.Errorf("TMDB_PAGES must be >= 1")
	}
	if cfg.TMDB.RequestsPerSecond < 0 {
		return fmt.Errorf("TMDB_RPS must be >= 0")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseFloatEnv(name, fallback string) (float64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

// parseListEnv splits a comma separated variable, e.g.
// CORS_ALLOWED_ORIGINS=https://app.com,https://admin.app.com
func parseListEnv(name string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
