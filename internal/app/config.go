package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	DatabaseURL   string `usage:"PostgreSQL connection URL (STOREFRONT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	SessionSecret string `usage:"Key signing the session cookie" flag:"session-secret"`
	ImageBaseURL  string `default:"/static/" usage:"Base URL for product images" flag:"image-base-url"`
	AMQPURL       string `usage:"RabbitMQ URL for receipt events; empty disables publishing" flag:"amqp-url"`
	Session       SessionConfig
	RateLimit     RateLimitConfig
	Graceful      GracefulConfig
}

// SessionConfig controls the session cookie.
type SessionConfig struct {
	Name   string        `default:"storefront" usage:"Session cookie name"`
	MaxAge time.Duration `default:"168h" usage:"Session cookie lifetime"`
	Secure bool          `default:"false" usage:"Send the session cookie over HTTPS only"`
}

// RateLimitConfig controls the per-client limiter on form submissions.
type RateLimitConfig struct {
	Max    int           `default:"60" usage:"Max POST requests per window"`
	Window time.Duration `default:"1m" usage:"Rate limit window duration"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from flags, environment variables and YAML
// config files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL is required: set STOREFRONT_DATABASE_URL or DATABASE_URL")
	}
	if c.SessionSecret == "" {
		return errors.New("session secret is required: set STOREFRONT_SESSION_SECRET")
	}
	if c.RateLimit.Max < 1 || c.RateLimit.Window <= 0 {
		return errors.Errorf("invalid rate limit %d per %s", c.RateLimit.Max, c.RateLimit.Window)
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
