package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.imagine.yaml",               // Project-specific config (highest priority)
	"~/.config/imagine/config.yaml", // User config
}

// EnvFiles are dotenv files loaded before environment overrides are applied.
// Variables already present in the environment win.
var EnvFiles = []string{".env"}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	envFiles    []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		envFiles:    EnvFiles,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables, including those from .env
// 3. ./.imagine.yaml
// 4. ~/.config/imagine/config.yaml
// 5. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config, err := l.load(customPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// LoadUnvalidated is LoadConfig without the final Validate, for callers that
// still apply flag overrides.
func (l *Loader) LoadUnvalidated(customPath string) (*Config, error) {
	return l.load(customPath)
}

func (l *Loader) load(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// lowest priority first so later files override earlier ones
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			path := expandPath(l.configPaths[i])
			if !fileExists(path) {
				continue
			}
			if err := l.loadFromFile(config, path); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", path, err)
			}
		}
	}

	if err := l.loadEnvFiles(); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return config, nil
}

// loadFromFile decodes a YAML file over the existing config; keys absent from
// the file keep their current values.
func (l *Loader) loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (l *Loader) loadEnvFiles() error {
	for _, f := range l.envFiles {
		if !fileExists(f) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		"IMAGINE_ENDPOINT":          func(v string) error { config.Endpoint = v; return nil },
		"IMAGINE_ENDPOINT_PARAM":    func(v string) error { config.EndpointParam = v; return nil },
		"IMAGINE_TIMEOUT":           func(v string) error { return parseDuration(v, &config.Timeout) },
		"IMAGINE_LOG_LEVEL":         func(v string) error { config.LogLevel = v; return nil },
		"IMAGINE_SUGGESTIONS":       func(v string) error { config.Suggestions = splitList(v); return nil },
		"IMAGINE_SUGGESTIONS_PARAM": func(v string) error { config.SuggestionsParam = v; return nil },
		"IMAGINE_OUTPUT_DIR":        func(v string) error { config.Output.Dir = v; return nil },
		"IMAGINE_OUTPUT_HTML":       func(v string) error { return parseBool(v, &config.Output.HTML) },
		"IMAGINE_STORE_BACKEND":     func(v string) error { config.Store.Backend = v; return nil },
		"IMAGINE_STORE_PREFIX":      func(v string) error { config.Store.Prefix = v; return nil },
		"IMAGINE_SITE_URL":          func(v string) error { config.Store.SiteURL = v; return nil },

		// names used by the lambda deployment
		"BUCKET":       func(v string) error { config.Store.Bucket = v; return nil },
		"DISTRIBUTION": func(v string) error { config.Store.Distribution = v; return nil },
	}

	for name, apply := range envMappings {
		value, ok := os.LookupEnv(name)
		if !ok || value == "" {
			continue
		}
		if err := apply(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func parseDuration(v string, dst *time.Duration) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", v, err)
	}
	*dst = d
	return nil
}

func parseBool(v string, dst *bool) error {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		return fmt.Errorf("invalid boolean %q", v)
	}
	return nil
}

// splitList splits on "|" since prompts commonly contain commas.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, "|") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
