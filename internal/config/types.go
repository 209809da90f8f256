package config

import (
	"time"

	"github.com/mattjoyce/slashgw/internal/signature"
)

// Config represents the complete slashgw configuration.
type Config struct {
	Include      []string           `yaml:"include,omitempty"`
	Service      ServiceConfig      `yaml:"service"`
	Server       ServerConfig       `yaml:"server"`
	Interactions InteractionsConfig `yaml:"interactions"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Events       EventsConfig       `yaml:"events"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Listen       string        `yaml:"listen"`
	Path         string        `yaml:"path"`
	MaxBodySize  string        `yaml:"max_body_size"` // e.g. "1MB", "65536"
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// InteractionsConfig defines how inbound interactions are authenticated.
type InteractionsConfig struct {
	// PublicKey is the platform's hex-encoded Ed25519 key, usually "${DISCORD_PUBLIC_KEY}".
	PublicKey       string `yaml:"public_key"`
	SignatureHeader string `yaml:"signature_header"`
	TimestampHeader string `yaml:"timestamp_header"`

	// MaxTimestampSkew rejects signed timestamps further than this from now.
	// Zero disables the check.
	MaxTimestampSkew time.Duration `yaml:"max_timestamp_skew"`
}

// MetricsConfig defines the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Runtime bool   `yaml:"runtime"`
}

// EventsConfig sizes the recent-dispatch buffer served on /events.
type EventsConfig struct {
	Buffer int `yaml:"buffer"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "slashgw",
			LogLevel: "info",
		},
		Server: ServerConfig{
			Listen:       "127.0.0.1:8787",
			Path:         "/interactions",
			MaxBodySize:  "1MB",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Interactions: InteractionsConfig{
			PublicKey:       "${DISCORD_PUBLIC_KEY}",
			SignatureHeader: signature.DefaultSignatureHeader,
			TimestampHeader: signature.DefaultTimestampHeader,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Events: EventsConfig{
			Buffer: 256,
		},
	}
}

// TrustedKey parses the configured public key.
func (c *Config) TrustedKey() (signature.TrustedKey, error) {
	return signature.ParseTrustedKey(c.Interactions.PublicKey)
}

// HeaderNames returns the configured signature header names.
func (c *Config) HeaderNames() signature.HeaderNames {
	return signature.HeaderNames{
		Signature: c.Interactions.SignatureHeader,
		Timestamp: c.Interactions.TimestampHeader,
	}
}

// Freshness returns the timestamp window check.
func (c *Config) Freshness() signature.Freshness {
	return signature.Freshness{MaxSkew: c.Interactions.MaxTimestampSkew}
}

// MaxBodyBytes parses server.max_body_size.
func (c *Config) MaxBodyBytes() (int64, error) {
	return ParseSize(c.Server.MaxBodySize)
}
