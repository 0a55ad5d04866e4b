package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Endpoint         string        `yaml:"endpoint" json:"endpoint"`                   // webhook URL
	EndpointParam    string        `yaml:"endpoint_param" json:"endpoint_param"`       // SSM parameter holding the webhook URL
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`                     // request timeout, 0 disables
	LogLevel         string        `yaml:"log_level" json:"log_level"`                 // debug|info|warn|error
	Suggestions      []string      `yaml:"suggestions" json:"suggestions"`             // prompt suggestions
	SuggestionsParam string        `yaml:"suggestions_param" json:"suggestions_param"` // SSM path holding suggestions
	Output           OutputConfig  `yaml:"output" json:"output"`
	Store            StoreConfig   `yaml:"store" json:"store"`
}

// OutputConfig configures where generated images land locally
type OutputConfig struct {
	Dir  string `yaml:"dir" json:"dir"`
	HTML bool   `yaml:"html" json:"html"` // write an HTML page next to each image
}

// StoreConfig configures the result store
type StoreConfig struct {
	Backend      string `yaml:"backend" json:"backend"` // file|s3
	Bucket       string `yaml:"bucket" json:"bucket"`
	Distribution string `yaml:"distribution" json:"distribution"` // CloudFront distribution to invalidate
	Prefix       string `yaml:"prefix" json:"prefix"`
	SiteURL      string `yaml:"site_url" json:"site_url"` // public base URL used in the feed
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Timeout:  60 * time.Second,
		LogLevel: "info",
		Suggestions: []string{
			"a cute astronaut cat on the moon",
			"a lighthouse in a storm, oil painting",
			"a cozy cabin in a snowy forest at dusk",
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Store: StoreConfig{
			Backend: "file",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Endpoint == "" && c.EndpointParam == "" {
		return fmt.Errorf("endpoint is required (set endpoint, endpoint_param or IMAGINE_ENDPOINT)")
	}
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid endpoint scheme %q (must be http or https)", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return c.validateStoreConfig()
}

func (c *Config) validateStoreConfig() error {
	switch c.Store.Backend {
	case "", "file":
		return nil
	case "s3":
		if c.Store.Bucket == "" {
			return fmt.Errorf("store.bucket is required for the s3 backend")
		}
		return nil
	default:
		return fmt.Errorf("invalid store backend: %s (must be one of: file, s3)", c.Store.Backend)
	}
}
