// Package config loads review client settings from flags, environment,
// an optional YAML file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "REVIEW"

// Config holds the settings of one review-client run.
type Config struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
	LogLevel      string        `mapstructure:"log_level"`
	ProjectPath   string        `mapstructure:"project_path"`
	Retry         RetryConfig   `mapstructure:"retry"`
}

type RetryConfig struct {
	Total         int           `mapstructure:"total"`
	BackoffFactor time.Duration `mapstructure:"backoff_factor"`
}

// Flags registers the client flags on fs.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML config file")
	fs.String("base-url", "http://localhost:3002", "Base URL of the review service")
	fs.Duration("timeout", 30*time.Second, "Request timeout")
	fs.Duration("health-timeout", 10*time.Second, "Timeout of the async health check")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.String("project-path", ".", "Path to the repository being reviewed")
	fs.Int("retries", 3, "Retries for failed requests")
	fs.Duration("backoff", time.Second, "Exponential backoff factor between retries")
}

// Load resolves the configuration. fs may be nil, in which case only the
// environment, the file named by REVIEW_CONFIG and defaults apply.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("base_url", "http://localhost:3002")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("health_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("project_path", ".")
	v.SetDefault("retry.total", 3)
	v.SetDefault("retry.backoff_factor", time.Second)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		bindings := map[string]string{
			"config":               "config",
			"base_url":             "base-url",
			"timeout":              "timeout",
			"health_timeout":       "health-timeout",
			"log_level":            "log-level",
			"project_path":         "project-path",
			"retry.total":          "retries",
			"retry.backoff_factor": "backoff",
		}
		for key, name := range bindings {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration can drive a client.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("base_url must include a host")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.HealthTimeout <= 0 {
		return errors.New("health_timeout must be positive")
	}
	if c.Retry.Total < 0 {
		return errors.New("retry.total must not be negative")
	}
	if c.Retry.BackoffFactor < 0 {
		return errors.New("retry.backoff_factor must not be negative")
	}
	return nil
}
