// Package config loads service settings from an optional YAML file and the
// environment. Environment variables always win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingJWTSecret     = errors.New("jwt.secret is required (JWT_SECRET)")
	ErrInvalidDriver        = errors.New("database.driver must be 'postgres' or 'sqlite'")
	ErrMissingDatabaseURL   = errors.New("database.url is required (DATABASE_URL)")
	ErrInvalidLogLevel      = errors.New("log.level must be one of: debug, info, warn, error")
	ErrInvalidRateLimit     = errors.New("server.rate_limit_max must be at least 1")
	ErrIncompleteAdminSeed  = errors.New("admin.email and admin.password must be set together")
	ErrIncompleteStorageCfg = errors.New("storage.bucket and storage.public_url are required when storage.endpoint is set")
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Storage  StorageConfig  `yaml:"storage"`
	Email    EmailConfig    `yaml:"email"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Ticket   TicketConfig   `yaml:"ticket"`
}

type ServerConfig struct {
	Port               string `yaml:"port"`
	AllowOrigins       string `yaml:"allow_origins"`
	RateLimitMax       int    `yaml:"rate_limit_max"`
	RateLimitWindowSec int    `yaml:"rate_limit_window_sec"`
}

// RateLimitWindow is the limiter expiration as a duration.
func (s ServerConfig) RateLimitWindow() time.Duration {
	return time.Duration(s.RateLimitWindowSec) * time.Second
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	Issuer      string `yaml:"issuer"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

func (j JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

// StorageConfig points at an S3 compatible bucket (Cloudflare R2, MinIO, S3).
type StorageConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	PublicURL       string `yaml:"public_url"`
}

// Enabled reports whether image uploads can be served.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != ""
}

type EmailConfig struct {
	APIKey      string `yaml:"api_key"`
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
	FrontendURL string `yaml:"frontend_url"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// AdminConfig seeds one admin account at startup when Email is set.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type TicketConfig struct {
	BaseURL string `yaml:"base_url"`
}

// Default returns the settings used when neither file nor environment says otherwise.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "5001",
			AllowOrigins:       "http://localhost:3000, http://localhost:5173",
			RateLimitMax:       120,
			RateLimitWindowSec: 60,
		},
		Database: DatabaseConfig{
			Driver: "postgres",
		},
		JWT: JWTConfig{
			Issuer:      "eventhub",
			ExpiryHours: 7 * 24,
		},
		Storage: StorageConfig{
			Region: "auto",
		},
		Email: EmailConfig{
			FromName:    "EventHub",
			FrontendURL: "http://localhost:3000",
		},
		Log: LogConfig{
			Level: "info",
		},
		Admin: AdminConfig{
			Name: "Administrator",
		},
		Ticket: TicketConfig{
			BaseURL: "http://localhost:3000/tickets",
		},
	}
}

// LoadConfig builds the configuration from defaults, the YAML file at path
// (skipped when path is empty or the file does not exist) and the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.AllowOrigins, "ALLOW_ORIGINS")
	setInt(&cfg.Server.RateLimitMax, "RATE_LIMIT_MAX")
	setInt(&cfg.Server.RateLimitWindowSec, "RATE_LIMIT_WINDOW_SEC")

	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.JWT.Issuer, "JWT_ISSUER")
	setInt(&cfg.JWT.ExpiryHours, "JWT_EXPIRY_HOURS")

	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.Region, "STORAGE_REGION")
	setString(&cfg.Storage.AccessKeyID, "STORAGE_ACCESS_KEY_ID")
	setString(&cfg.Storage.SecretAccessKey, "STORAGE_SECRET_ACCESS_KEY")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setString(&cfg.Storage.PublicURL, "STORAGE_PUBLIC_URL")

	setString(&cfg.Email.APIKey, "RESEND_API_KEY")
	setString(&cfg.Email.FromAddress, "EMAIL_FROM_ADDRESS")
	setString(&cfg.Email.FromName, "EMAIL_FROM_NAME")
	setString(&cfg.Email.FrontendURL, "FRONTEND_URL")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setBool(&cfg.Log.Development, "LOG_DEVELOPMENT")

	setString(&cfg.Admin.Name, "ADMIN_NAME")
	setString(&cfg.Admin.Email, "ADMIN_EMAIL")
	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")

	setString(&cfg.Ticket.BaseURL, "TICKET_BASE_URL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Validate checks the loaded configuration for consistency.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return ErrMissingDatabaseURL
		}
	case "sqlite":
		if c.Database.URL == "" {
			c.Database.URL = "eventhub.db"
		}
	default:
		return ErrInvalidDriver
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	if c.Server.RateLimitMax < 1 {
		return ErrInvalidRateLimit
	}
	if c.Server.RateLimitWindowSec < 1 {
		c.Server.RateLimitWindowSec = 60
	}

	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		return ErrIncompleteAdminSeed
	}

	if c.Storage.Enabled() && (c.Storage.Bucket == "" || c.Storage.PublicURL == "") {
		return ErrIncompleteStorageCfg
	}

	return nil
}
