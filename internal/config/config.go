// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	DB       DBConfig       `mapstructure:"db"`
	Scout    ScoutConfig    `mapstructure:"scout"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Mail     MailConfig     `mapstructure:"mail"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig guards the admin routes (listing delete).
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// DBConfig controls access to the relational database. An empty DSN selects
// the in-memory store.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// ScoutConfig governs the metadata extractors.
type ScoutConfig struct {
	Provider       string   `mapstructure:"provider"`
	UserAgent      string   `mapstructure:"user_agent"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	ReverbAPIURL   string   `mapstructure:"reverb_api_url"`
	MicrolinkURL   string   `mapstructure:"microlink_url"`
	PrerenderHosts []string `mapstructure:"prerender_hosts"`
}

// HeadlessConfig configures the direct provider's JS renderer.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// MailConfig holds Resend credentials and addressing. Provider "noop"
// swaps in a mailer that accepts everything, for local development.
type MailConfig struct {
	Provider   string `mapstructure:"provider"`
	APIKey     string `mapstructure:"api_key"`
	Endpoint   string `mapstructure:"endpoint"`
	From       string `mapstructure:"from"`
	AdminEmail string `mapstructure:"admin_email"`
}

// ArchiveConfig sets the raw-payload blob store.
type ArchiveConfig struct {
	Provider  string `mapstructure:"provider"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PubSubConfig holds metadata for the optional ingest-event topic.
type PubSubConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("db.table", "marketplace_items")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("scout.provider", "microlink")
	v.SetDefault("scout.user_agent", "listing-scout/1.0")
	v.SetDefault("scout.timeout_seconds", 10)
	v.SetDefault("scout.reverb_api_url", "https://api.reverb.com/api")
	v.SetDefault("scout.microlink_url", "https://api.microlink.io")
	v.SetDefault("scout.prerender_hosts", []string{"facebook.com", "instagram.com", "ebay.com"})
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("mail.provider", "resend")
	v.SetDefault("mail.endpoint", "https://api.resend.com/emails")
	v.SetDefault("mail.from", "MusicWeb Support <service@musicweb.com>")
	v.SetDefault("mail.admin_email", "bob@musicweb.com")
	v.SetDefault("archive.provider", "noop")
	v.SetDefault("archive.prefix", "scouts")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Scout.TimeoutSeconds <= 0 {
		return fmt.Errorf("scout.timeout_seconds must be > 0")
	}
	switch c.Scout.Provider {
	case "microlink", "direct":
	default:
		return fmt.Errorf("scout.provider must be microlink or direct, got %q", c.Scout.Provider)
	}
	switch c.Mail.Provider {
	case "resend", "noop":
	default:
		return fmt.Errorf("mail.provider must be resend or noop, got %q", c.Mail.Provider)
	}
	switch c.Archive.Provider {
	case "noop", "gcs":
	default:
		return fmt.Errorf("archive.provider must be noop or gcs, got %q", c.Archive.Provider)
	}
	if c.Archive.Provider == "gcs" && c.Archive.GCSBucket == "" {
		return fmt.Errorf("archive.gcs_bucket must be set when archive.provider is gcs")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.PubSub.Enabled && (c.PubSub.ProjectID == "" || c.PubSub.TopicName == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic_name must be set when pubsub is enabled")
	}
	return nil
}

// ScoutTimeout converts the extractor timeout config into a duration.
func (c Config) ScoutTimeout() time.Duration {
	return time.Duration(c.Scout.TimeoutSeconds) * time.Second
}
