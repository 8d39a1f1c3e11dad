// Package config loads relay configuration from a YAML file with
// environment-variable overrides. A local .env file is honored for
// development; in deployed environments everything comes from the real
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the relay service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Relay    RelayConfig    `yaml:"relay"`
	Tracking TrackingConfig `yaml:"tracking"`
	SendGrid SendGridConfig `yaml:"sendgrid"`
	SES      SESConfig      `yaml:"ses"`
	Graph    GraphConfig    `yaml:"graph"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the optional Redis connection for message-id dedup.
// An empty Addr disables the dedup store; the header-based loop guard
// still applies.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RelayConfig holds the injection pipeline settings.
type RelayConfig struct {
	// Provider selects the outbound forwarder: "sendgrid", "ses" or "graph".
	Provider string `yaml:"provider"`
	// DedupTTLHours is how long a processed message id is remembered.
	DedupTTLHours int `yaml:"dedup_ttl_hours"`
}

// TrackingConfig holds click/view tracking settings.
type TrackingConfig struct {
	// BaseURL is the public origin tracking links point at,
	// e.g. "https://track.example.com".
	BaseURL string `yaml:"base_url"`
	// SessionRetentionDays is how long tracking sessions are kept before the
	// background sweeper purges them. Zero means keep forever.
	SessionRetentionDays int `yaml:"session_retention_days"`
}

// SendGridConfig holds SendGrid API credentials.
type SendGridConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// SESConfig holds AWS SES credentials for the alternate forwarder.
type SESConfig struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
}

// GraphConfig holds Microsoft Graph client-credential settings for the
// alternate forwarder.
type GraphConfig struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// LoggingConfig holds log level and redaction settings.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads the YAML file at path (if it exists), applies defaults, then
// applies environment overrides. Path may be empty for env-only operation.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Relay.Provider == "" {
		c.Relay.Provider = "sendgrid"
	}
	if c.Relay.DedupTTLHours == 0 {
		c.Relay.DedupTTLHours = 24
	}
	if c.Tracking.SessionRetentionDays == 0 {
		c.Tracking.SessionRetentionDays = 90
	}
	if c.SendGrid.BaseURL == "" {
		c.SendGrid.BaseURL = "https://api.sendgrid.com/v3"
	}
	if c.SES.Region == "" {
		c.SES.Region = "us-east-1"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("RELAY_PROVIDER"); v != "" {
		c.Relay.Provider = v
	}
	if v := os.Getenv("TRACKING_BASE_URL"); v != "" {
		c.Tracking.BaseURL = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		c.SendGrid.APIKey = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		c.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		c.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		c.SES.Region = v
	}
	if v := os.Getenv("GRAPH_TENANT_ID"); v != "" {
		c.Graph.TenantID = v
	}
	if v := os.Getenv("GRAPH_CLIENT_ID"); v != "" {
		c.Graph.ClientID = v
	}
	if v := os.Getenv("GRAPH_CLIENT_SECRET"); v != "" {
		c.Graph.ClientSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) validate() error {
	switch c.Relay.Provider {
	case "sendgrid", "ses", "graph":
	default:
		return fmt.Errorf("unknown relay provider %q", c.Relay.Provider)
	}
	return nil
}

// PIIRedactionEnabled reports whether log redaction is on (default true).
func (c *LoggingConfig) PIIRedactionEnabled() bool {
	if c.RedactPII == nil {
		return true
	}
	return *c.RedactPII
}
