// Package config loads the console configuration from a yaml file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the console configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Listen string       `yaml:"listen"`
}

// ServerConfig describes the admin backend the console talks to.
type ServerConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	CSRFCookie string        `yaml:"csrf_cookie"`
}

// Load reads the configuration from a yaml file and applies environment
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config/console.yaml, falling back to defaults plus
// environment overrides when the file is absent.
func LoadOrDefault() *Config {
	cfg, err := Load(filepath.Join("config", "console.yaml"))
	if err != nil {
		cfg = Default()
		cfg.applyEnv()
	}
	return cfg
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://127.0.0.1:8000",
			Timeout: 10 * time.Second,
		},
		Listen: ":8090",
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CONSOLE_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("CONSOLE_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("CONSOLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.Timeout = d
		}
	}
}

func (c *Config) validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("config: server.base_url is required")
	}
	return nil
}
