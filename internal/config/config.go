package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Cron     CronConfig     `yaml:"cron"`
	Shopify  ShopifyConfig  `yaml:"shopify"`
	Gmail    GmailConfig    `yaml:"gmail"`
	Apify    ApifyConfig    `yaml:"apify"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Export   ExportConfig   `yaml:"export"`
	Notifier NotifierConfig `yaml:"notifier"`
	Prospect ProspectConfig `yaml:"prospect"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

// RedisConfig holds Redis connection settings. Redis is optional: when the
// URL is empty the prospect job store stays in-process and cron endpoints
// fall back to PG advisory locks.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig holds Google OAuth authentication configuration for operators
type AuthConfig struct {
	Enabled            bool   `yaml:"enabled"`
	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`
	AllowedDomain      string `yaml:"allowed_domain"`
	SessionSecret      string `yaml:"session_secret"`
	CookieName         string `yaml:"cookie_name"`
	CookieMaxAge       int    `yaml:"cookie_max_age"`
}

// CronConfig protects the scheduled-invocation endpoints
type CronConfig struct {
	Secret string `yaml:"secret"`
}

// ShopifyConfig holds storefront Admin API credentials
type ShopifyConfig struct {
	ShopDomain     string `yaml:"shop_domain"` // e.g. "lumina-shop.myshopify.com"
	AccessToken    string `yaml:"access_token"`
	WebhookSecret  string `yaml:"webhook_secret"`
	APIVersion     string `yaml:"api_version"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c ShopifyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Configured reports whether the storefront integration can be used
func (c ShopifyConfig) Configured() bool {
	return c.ShopDomain != "" && c.AccessToken != ""
}

// GmailConfig holds the refresh-token-backed Gmail API credentials
type GmailConfig struct {
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	RefreshToken   string `yaml:"refresh_token"`
	SenderAddress  string `yaml:"sender_address"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c GmailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Configured reports whether mail sending/sync can be used
func (c GmailConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// ApifyConfig holds scraping provider settings
type ApifyConfig struct {
	Token          string `yaml:"token"`
	BaseURL        string `yaml:"base_url"`
	ActorID        string `yaml:"actor_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c ApifyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Configured reports whether profile scraping can be used
func (c ApifyConfig) Configured() bool {
	return c.Token != "" && c.ActorID != ""
}

// GeminiConfig holds generative text API settings
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Enabled bool   `yaml:"enabled"`
}

// Configured reports whether text generation can be used
func (c GeminiConfig) Configured() bool {
	return c.Enabled && c.APIKey != ""
}

// ExportConfig holds S3 payout-export settings
type ExportConfig struct {
	S3Bucket  string `yaml:"s3_bucket"`
	AWSRegion string `yaml:"aws_region"`
	KeyPrefix string `yaml:"key_prefix"`
}

// Configured reports whether batch CSV export can be used
func (c ExportConfig) Configured() bool {
	return c.S3Bucket != ""
}

// NotifierConfig tunes the notification outbox dispatcher
type NotifierConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	MaxAttempts     int `yaml:"max_attempts"`
	BatchSize       int `yaml:"batch_size"`
}

// Interval returns the dispatch polling interval as a duration
func (c NotifierConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// ProspectConfig tunes prospector job execution
type ProspectConfig struct {
	MaxConcurrent  int `yaml:"max_concurrent"`
	DefaultMax     int `yaml:"default_max"`
	TimeoutMinutes int `yaml:"timeout_minutes"`
}

// Timeout returns the per-job execution deadline
func (c ProspectConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// Load reads and parses the configuration file. A missing file is not an
// error; everything can come from env overrides and defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 3
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 5
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-07"
	}
	if cfg.Shopify.TimeoutSeconds == 0 {
		cfg.Shopify.TimeoutSeconds = 30
	}
	if cfg.Gmail.TimeoutSeconds == 0 {
		cfg.Gmail.TimeoutSeconds = 30
	}
	if cfg.Apify.BaseURL == "" {
		cfg.Apify.BaseURL = "https://api.apify.com"
	}
	if cfg.Apify.TimeoutSeconds == 0 {
		cfg.Apify.TimeoutSeconds = 120
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Export.KeyPrefix == "" {
		cfg.Export.KeyPrefix = "payout-batches"
	}
	if cfg.Notifier.IntervalSeconds == 0 {
		cfg.Notifier.IntervalSeconds = 30
	}
	if cfg.Notifier.MaxAttempts == 0 {
		cfg.Notifier.MaxAttempts = 5
	}
	if cfg.Notifier.BatchSize == 0 {
		cfg.Notifier.BatchSize = 20
	}
	if cfg.Prospect.MaxConcurrent == 0 {
		cfg.Prospect.MaxConcurrent = 2
	}
	if cfg.Prospect.DefaultMax == 0 {
		cfg.Prospect.DefaultMax = 25
	}
	if cfg.Prospect.TimeoutMinutes == 0 {
		cfg.Prospect.TimeoutMinutes = 10
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "partnerdesk_session"
	}
	if cfg.Auth.CookieMaxAge == 0 {
		cfg.Auth.CookieMaxAge = 86400
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SHOPIFY_SHOP_DOMAIN"); v != "" {
		cfg.Shopify.ShopDomain = v
	}
	if v := os.Getenv("SHOPIFY_ACCESS_TOKEN"); v != "" {
		cfg.Shopify.AccessToken = v
	}
	if v := os.Getenv("SHOPIFY_WEBHOOK_SECRET"); v != "" {
		cfg.Shopify.WebhookSecret = v
	}
	if v := os.Getenv("GMAIL_CLIENT_ID"); v != "" {
		cfg.Gmail.ClientID = v
	}
	if v := os.Getenv("GMAIL_CLIENT_SECRET"); v != "" {
		cfg.Gmail.ClientSecret = v
	}
	if v := os.Getenv("GMAIL_REFRESH_TOKEN"); v != "" {
		cfg.Gmail.RefreshToken = v
	}
	if v := os.Getenv("GMAIL_SENDER_ADDRESS"); v != "" {
		cfg.Gmail.SenderAddress = v
	}
	if v := os.Getenv("APIFY_TOKEN"); v != "" {
		cfg.Apify.Token = v
	}
	if v := os.Getenv("APIFY_ACTOR_ID"); v != "" {
		cfg.Apify.ActorID = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
		cfg.Gemini.Enabled = true
	}
	if v := os.Getenv("EXPORT_S3_BUCKET"); v != "" {
		cfg.Export.S3Bucket = v
	}
	if v := os.Getenv("EXPORT_AWS_REGION"); v != "" {
		cfg.Export.AWSRegion = v
	}
	if v := os.Getenv("CRON_SECRET"); v != "" {
		cfg.Cron.Secret = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.GoogleClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.GoogleClientSecret = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Auth.SessionSecret = v
	}
	if v := os.Getenv("AUTH_ALLOWED_DOMAIN"); v != "" {
		cfg.Auth.AllowedDomain = v
	}

	return cfg, nil
}
