// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "default-secret"

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
	RequestTimeout time.Duration
	UploadsDir     string
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	URI            string
	Name           string
	ConnectTimeout time.Duration
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Auth           *AuthConfig
	AllowedOrigins []string
	Env            string
	LogFormat      string
	Debug          bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           5000,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
		RequestTimeout: 5 * time.Second,
		UploadsDir:     "uploads",
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URI:            "mongodb://localhost:27017",
		Name:           "blog-platform",
		ConnectTimeout: 10 * time.Second,
	}
}

// Addr is the listen address for the HTTP server.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the process runs with production safeguards.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// loadDotEnv tries the same relative locations the binaries are usually started from.
func loadDotEnv() {
	envLocations := []string{
		".env",          // Current directory
		"../../.env",    // Project root when running from cmd/server
		"../../../.env", // Even higher directory
	}
	if gopath := os.Getenv("GOPATH"); gopath != "" {
		envLocations = append(envLocations, filepath.Join(gopath, "src/blog-platform/.env"))
	}

	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			return
		}
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	server := DefaultConfig()
	db := DefaultDatabaseConfig()

	v.SetDefault("HOST", server.Host)
	v.SetDefault("PORT", server.Port)
	v.SetDefault("METRICS_ENABLED", server.MetricsEnabled)
	v.SetDefault("REQUEST_TIMEOUT", server.RequestTimeout)
	v.SetDefault("UPLOADS_DIR", server.UploadsDir)
	v.SetDefault("MONGO_URI", db.URI)
	v.SetDefault("MONGO_DB", db.Name)
	v.SetDefault("DB_CONNECT_TIMEOUT", db.ConnectTimeout)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", 7*24*time.Hour)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_FORMAT", "")
	return v
}

// LoadConfig loads configuration from a .env file and environment variables and applies defaults
func LoadConfig() (*Config, error) {
	loadDotEnv()
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: &ServerConfig{
			Host:           v.GetString("HOST"),
			Port:           v.GetInt("PORT"),
			MetricsEnabled: v.GetBool("METRICS_ENABLED"),
			RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
			UploadsDir:     v.GetString("UPLOADS_DIR"),
		},
		Database: &DatabaseConfig{
			URI:            v.GetString("MONGO_URI"),
			Name:           v.GetString("MONGO_DB"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
		},
		Auth: &AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			TokenTTL:  v.GetDuration("JWT_TTL"),
		},
		AllowedOrigins: splitOrigins(v.GetString("ALLOWED_ORIGINS")),
		Env:            strings.ToLower(v.GetString("APP_ENV")),
		LogFormat:      strings.ToLower(v.GetString("LOG_FORMAT")),
		Debug:          v.GetBool("DEBUG"),
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
		if cfg.IsProduction() {
			cfg.LogFormat = "json"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate ensures that required values are present and safe for the environment.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.URI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.Database.Name == "" {
		return errors.New("MONGO_DB is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}

	if c.IsProduction() {
		if c.Auth.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
	}
	return nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
