package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	OrderAPI OrderAPIConfig
	Checkout CheckoutConfig
	Session  SessionConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host          string
	Port          int
	AllowedOrigin string
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// OrderAPIConfig holds configuration for the external order service.
type OrderAPIConfig struct {
	BaseURL         string
	Timeout         int // seconds
	BreakerFailures int // consecutive profile lookup failures before the breaker opens
	BreakerCooldown int // seconds
}

// CheckoutConfig holds checkout hand-off configuration.
type CheckoutConfig struct {
	WhatsAppPhone string
}

// SessionConfig holds browser session configuration.
type SessionConfig struct {
	TTL        int // seconds
	CookieName string
}

// LoadEnvFile loads variables from a dotenv file if it exists.
// Variables already set in the environment are not overridden.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "0.0.0.0"),
			Port:          getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OrderAPI: OrderAPIConfig{
			BaseURL:         getEnv("ORDER_API_BASE_URL", "http://localhost:5000/api"),
			Timeout:         getEnvAsInt("ORDER_API_TIMEOUT", 15),
			BreakerFailures: getEnvAsInt("PROFILE_BREAKER_FAILURES", 3),
			BreakerCooldown: getEnvAsInt("PROFILE_BREAKER_COOLDOWN", 30),
		},
		Checkout: CheckoutConfig{
			WhatsAppPhone: getEnv("WHATSAPP_PHONE", "+918171203683"),
		},
		Session: SessionConfig{
			TTL:        getEnvAsInt("SESSION_TTL", 7200),
			CookieName: getEnv("SESSION_COOKIE", "premi_session"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.OrderAPI.BaseURL == "" {
		return fmt.Errorf("order API base URL is required")
	}

	u, err := url.Parse(c.OrderAPI.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid order API base URL: %s", c.OrderAPI.BaseURL)
	}

	if c.OrderAPI.Timeout < 1 {
		return fmt.Errorf("order API timeout must be at least 1 second")
	}

	if c.OrderAPI.BreakerFailures < 1 {
		return fmt.Errorf("profile breaker failures must be at least 1")
	}

	if c.OrderAPI.BreakerCooldown < 1 {
		return fmt.Errorf("profile breaker cooldown must be at least 1 second")
	}

	if c.Checkout.WhatsAppPhone == "" {
		return fmt.Errorf("WhatsApp phone is required")
	}

	if c.Session.TTL < 60 {
		return fmt.Errorf("session TTL must be at least 60 seconds")
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	return nil
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RequestTimeout returns the per-request timeout for the order service.
func (c *OrderAPIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Cooldown returns how long the profile breaker stays open.
func (c *OrderAPIConfig) Cooldown() time.Duration {
	return time.Duration(c.BreakerCooldown) * time.Second
}

// IdleTimeout returns how long an unused session is kept.
func (c *SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
