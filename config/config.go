// Package config loads the pipeline configuration from a YAML file, with
// environment variables overriding secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider    = "openai"
	DefaultModel       = "gpt-4o-mini"
	DefaultCallTimeout = Duration(30 * time.Second)
	DefaultMaxResults  = 5
)

// Duration wraps time.Duration so YAML can carry values like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// LLM selects the language-model provider behind every agent.
type LLM struct {
	// Provider is one of openai, anthropic, cohere
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	// BaseURL overrides the provider endpoint, e.g. for a proxy
	BaseURL string `yaml:"base_url"`
}

// Search configures the web search backend.
type Search struct {
	BaseURL    string `yaml:"base_url"`
	Language   string `yaml:"language"`
	MaxResults int    `yaml:"max_results"`
}

// Calendar configures the calendar backend.
type Calendar struct {
	BaseURL    string `yaml:"base_url"`
	CalendarID string `yaml:"calendar_id"`
	AuthToken  string `yaml:"auth_token"`
}

type Config struct {
	LLM      LLM      `yaml:"llm"`
	Search   Search   `yaml:"search"`
	Calendar Calendar `yaml:"calendar"`
	// CallTimeout bounds each external call a worker makes
	CallTimeout Duration `yaml:"call_timeout"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// Load reads the YAML file at path, applies defaults and environment
// overrides, and validates the result. An empty path yields a config built
// from defaults and environment alone.
func Load(path string) (*Config, error) {
	cfg := new(Config)
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = DefaultMaxResults
	}
	if c.Calendar.CalendarID == "" {
		c.Calendar.CalendarID = "primary"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// applyEnv lets secrets stay out of the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.LLM.Provider == "openai" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && c.LLM.Provider == "anthropic" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("COHERE_API_KEY"); v != "" && c.LLM.Provider == "cohere" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("SEARXNG_BASE_URL"); v != "" {
		c.Search.BaseURL = v
	}
	if v := os.Getenv("CALENDAR_BASE_URL"); v != "" {
		c.Calendar.BaseURL = v
	}
	if v := os.Getenv("CALENDAR_AUTH_TOKEN"); v != "" {
		c.Calendar.AuthToken = v
	}
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "anthropic", "cohere":
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("missing API key for provider %q", c.LLM.Provider)
	}
	if c.Search.BaseURL == "" {
		return fmt.Errorf("missing search base_url")
	}
	if c.Calendar.BaseURL == "" {
		return fmt.Errorf("missing calendar base_url")
	}
	return nil
}
