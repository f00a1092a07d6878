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
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server ports
	APIPort  int
	SMTPPort int

	// Mail-to-inbox bridge
	SMTPEnabled      bool
	SMTPDomain       string
	ContactAddresses []string

	// Logging
	LogLevel string
	LogFile  string

	// Security
	AdminToken     string
	AllowedOrigins []string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// LoadDotEnv loads variables from .env files into the environment.
// Missing files are ignored; variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// Required: DATABASE_URL
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	if cfg.APIPort, err = envInt("API_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = envInt("SMTP_PORT", 2525); err != nil {
		return nil, err
	}
	if cfg.SMTPEnabled, err = envBool("SMTP_ENABLED", false); err != nil {
		return nil, err
	}

	cfg.SMTPDomain = envString("SMTP_DOMAIN", "localhost")
	cfg.ContactAddresses = envList("CONTACT_ADDRESSES")
	for i, addr := range cfg.ContactAddresses {
		cfg.ContactAddresses[i] = strings.ToLower(addr)
	}

	cfg.LogLevel = envString("LOG_LEVEL", "info")
	cfg.LogFile = os.Getenv("LOG_FILE")

	// Security configuration
	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")
	cfg.AllowedOrigins = envList("ALLOWED_ORIGINS")
	cfg.AppEnv = envString("APP_ENV", "development")

	// Rate limiting configuration
	if cfg.RateLimitRequests, err = envFloat("RATE_LIMIT_REQUESTS", 10.0); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

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
	if cfg.IsProduction() {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTPPort must be between 1 and 65535")
	}
	if c.SMTPEnabled && len(c.ContactAddresses) == 0 {
		return fmt.Errorf("CONTACT_ADDRESSES is required when SMTP_ENABLED is true")
	}
	if c.RateLimitRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.AdminToken == "" {
		return fmt.Errorf("ADMIN_TOKEN is required in production")
	}

	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	// Check for wildcard in production
	for _, origin := range c.AllowedOrigins {
		if strings.Contains(origin, "*") {
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
		slog.Int("contact_addresses", len(c.ContactAddresses)),
		slog.String("log_level", c.LogLevel),
		slog.Bool("log_file_set", c.LogFile != ""),
		slog.String("app_env", c.AppEnv),
		slog.Bool("admin_token_set", c.AdminToken != ""),
		slog.Int("allowed_origins", len(c.AllowedOrigins)),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a valid boolean: %w", key, err)
	}
	return v, nil
}

// envList splits a comma-separated variable, dropping blanks
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
