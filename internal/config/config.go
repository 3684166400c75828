package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/repository"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/services"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/validator"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// HTTP
	APIPort int

	// SMTP intake
	SMTPEnabled bool
	SMTPPort    int
	SMTPDomain  string
	SMTPTakenBy string
	SMTPTLSCert string
	SMTPTLSKey  string

	// Logging
	LogLevel string

	// Security
	APIKey         string
	AllowedOrigins []string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int

	// Store policies
	ReturnPolicy      repository.ReturnPolicy
	LookupErrorPolicy services.LookupErrorPolicy
}

// LoadDotEnv seeds the environment from the given .env files.
// Missing files are skipped and variables already set are never overridden.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Required: DATABASE_URL
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	var err error
	if cfg.APIPort, err = intEnv("API_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = intEnv("SMTP_PORT", 2525); err != nil {
		return nil, err
	}
	if cfg.SMTPEnabled, err = boolEnv("SMTP_ENABLED", false); err != nil {
		return nil, err
	}

	cfg.SMTPDomain = strings.ToLower(stringEnv("SMTP_DOMAIN", "voicemail.local"))
	cfg.SMTPTakenBy = stringEnv("SMTP_TAKEN_BY", "Voicemail System")
	cfg.SMTPTLSCert = os.Getenv("SMTP_TLS_CERT")
	cfg.SMTPTLSKey = os.Getenv("SMTP_TLS_KEY")
	cfg.LogLevel = stringEnv("LOG_LEVEL", "info")

	// Security configuration
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))
	cfg.AppEnv = stringEnv("APP_ENV", "development")

	// Rate limiting configuration
	cfg.RateLimitRequests = 10.0
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		v, err := strconv.ParseFloat(rps, 64)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be a valid number: %w", err)
		}
		cfg.RateLimitRequests = v
	}
	if cfg.RateLimitBurst, err = intEnv("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	// Store policies
	policy, ok := repository.ParseReturnPolicy(os.Getenv("RETURN_POLICY"))
	if !ok {
		return nil, fmt.Errorf("RETURN_POLICY must be first-write or refresh")
	}
	cfg.ReturnPolicy = policy

	lookup, ok := services.ParseLookupErrorPolicy(os.Getenv("LOOKUP_ERROR_POLICY"))
	if !ok {
		return nil, fmt.Errorf("LOOKUP_ERROR_POLICY must be create or propagate")
	}
	cfg.LookupErrorPolicy = lookup

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Production-specific validation
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.RateLimitRequests <= 0 {
		return fmt.Errorf("RateLimitRequests must be positive")
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("RateLimitBurst must be positive")
	}
	if c.SMTPEnabled {
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			return fmt.Errorf("SMTPPort must be between 1 and 65535")
		}
		if err := validator.ValidateDomain(c.SMTPDomain); err != nil {
			return fmt.Errorf("SMTP_DOMAIN %q: %w", c.SMTPDomain, err)
		}
		if strings.TrimSpace(c.SMTPTakenBy) == "" {
			return fmt.Errorf("SMTP_TAKEN_BY cannot be empty")
		}
		if (c.SMTPTLSCert == "") != (c.SMTPTLSKey == "") {
			return fmt.Errorf("SMTP_TLS_CERT and SMTP_TLS_KEY must be set together")
		}
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	// Check for wildcard in production
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard (*) origins are not allowed in production")
		}
	}

	// Check for sslmode=disable in database URL
	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	return nil
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.Bool("smtp_enabled", c.SMTPEnabled),
		slog.Int("smtp_port", c.SMTPPort),
		slog.String("smtp_domain", c.SMTPDomain),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Int("allowed_origins", len(c.AllowedOrigins)),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
		slog.Bool("returned_at_refresh", c.ReturnPolicy == repository.ReturnedAtRefresh),
		slog.String("lookup_error_policy", c.LookupErrorPolicy.String()),
	)
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a valid boolean: %w", key, err)
	}
	return b, nil
}

// splitList splits a comma-separated value, dropping empty entries
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
