// Package config loads the service configuration from an optional TOML file
// and MM_ prefixed environment variables.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/errors/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables, e.g. MM_DATABASE_URL.
const envPrefix = "MM"

// Config is the full service configuration.
type Config struct {
	ListenAddr  string        `mapstructure:"listen_addr"`
	DatabaseURL string        `mapstructure:"database_url"`
	Auth        AuthConfig    `mapstructure:"auth"`
	Session     SessionConfig `mapstructure:"session"`
	Ingestion   IngestConfig  `mapstructure:"ingestion"`
	Tracing     TraceConfig   `mapstructure:"tracing"`
}

// AuthConfig configures the OIDC provider integration.
type AuthConfig struct {
	IssuerURL    string `mapstructure:"issuer_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// SessionConfig configures the session cookie and lifetime.
type SessionConfig struct {
	// CookieKey is a Base64-encoded string representing at least 32 bytes
	// of cryptographically secure random data.
	CookieKey       string        `mapstructure:"cookie_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	InsecureCookies bool          `mapstructure:"insecure_cookies"`
}

// IngestConfig configures the mail ingestion endpoint.
type IngestConfig struct {
	// Token authenticates the mail forwarder posting to the ingestion
	// endpoint.
	Token string `mapstructure:"token"`
}

// TraceConfig configures the OTLP trace export.
type TraceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// Load reads the configuration from configFile (optional, TOML), a .env file
// in the working directory if present, and the environment.
func Load(configFile string) (*Config, error) {
	// Ignore a missing .env; it only exists in development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "godotenv.Load()")
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so every key is bound
	// explicitly rather than relying on AutomaticEnv alone.
	for _, key := range []string{
		"listen_addr",
		"database_url",
		"auth.issuer_url",
		"auth.client_id",
		"auth.client_secret",
		"auth.redirect_url",
		"session.cookie_key",
		"session.timeout",
		"session.insecure_cookies",
		"ingestion.token",
		"tracing.enabled",
		"tracing.endpoint",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "viper.Viper.BindEnv() for %s", key)
		}
	}

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("session.timeout", 24*time.Hour)
	v.SetDefault("tracing.endpoint", "localhost:4318")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "viper.Viper.ReadInConfig() for %s", configFile)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "viper.Viper.Unmarshal()")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"database_url", c.DatabaseURL},
		{"auth.issuer_url", c.Auth.IssuerURL},
		{"auth.client_id", c.Auth.ClientID},
		{"auth.client_secret", c.Auth.ClientSecret},
		{"auth.redirect_url", c.Auth.RedirectURL},
		{"session.cookie_key", c.Session.CookieKey},
		{"ingestion.token", c.Ingestion.Token},
	}

	for _, r := range required {
		if r.value == "" {
			return errors.Newf("missing required configuration value %q", r.name)
		}
	}

	return nil
}
