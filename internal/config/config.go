package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort    = 8000
	DefaultBaseURL = "https://api.agi.tech"
	DefaultModel   = "agi-latest"
	DefaultTimeout = 60 * time.Second
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
		// APIKeys maps a client name to its static bearer token.
		// Empty means /analyze_logs is open.
		APIKeys map[string]string `yaml:"api_keys"`
	} `yaml:"server"`

	AGI AGIConfig `yaml:"agi"`

	Logging struct {
		Level string `yaml:"level"`
		// Development switches to colored console output.
		Development bool `yaml:"development"`
	} `yaml:"logging"`
}

// AGIConfig describes the outbound chat-completion service.
type AGIConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load baca file config.yaml kalau ada, lalu timpa dengan environment.
// A missing file is fine: defaults plus env are enough to run.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("AGI_API_KEY"); v != "" {
		c.AGI.APIKey = v
	}
	if v := os.Getenv("AGI_BASE_URL"); v != "" {
		c.AGI.BaseURL = v
	}
	if v := os.Getenv("AGI_MODEL"); v != "" {
		c.AGI.Model = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.AGI.BaseURL == "" {
		c.AGI.BaseURL = DefaultBaseURL
	}
	c.AGI.BaseURL = strings.TrimRight(c.AGI.BaseURL, "/")
	if c.AGI.Model == "" {
		c.AGI.Model = DefaultModel
	}
	if c.AGI.Timeout <= 0 {
		c.AGI.Timeout = DefaultTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
