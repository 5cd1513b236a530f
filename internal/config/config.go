// Package config loads the application configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/bizevents/internal/storage"
)

// DefaultPath is read when no --config flag is given. It may be absent.
const DefaultPath = "bizevents.yaml"

// Environment variables that override the file.
const (
	EnvDatabase = "BIZEVENTS_DATABASE"
	EnvSitesDir = "BIZEVENTS_SITES_DIR"
	EnvListen   = "BIZEVENTS_LISTEN"
	EnvWorkers  = "BIZEVENTS_WORKERS"
	EnvLogLevel = "LOG_LEVEL"
)

type Config struct {
	SitesDir    string        `yaml:"sites_dir"`
	Database    string        `yaml:"database"`
	Listen      string        `yaml:"listen"`
	LogLevel    string        `yaml:"log_level"`
	Workers     int           `yaml:"workers"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	UserAgent   string        `yaml:"user_agent"`
	// HostSpacing is the minimum delay between requests to one host.
	HostSpacing time.Duration `yaml:"host_spacing"`
	ChromePath  string        `yaml:"chrome_path"`
	RenderWait  time.Duration `yaml:"render_wait"`
	// Sites is the default run list. Empty means every configured site.
	Sites []string `yaml:"sites"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		SitesDir:    "configs/sites",
		Database:    storage.DefaultDSN,
		Listen:      ":8000",
		LogLevel:    "INFO",
		Workers:     1,
		HTTPTimeout: 30 * time.Second,
		RenderWait:  5 * time.Second,
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is only an error when path is not DefaultPath.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		path = DefaultPath
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case os.IsNotExist(err) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.fill()
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvSitesDir); v != "" {
		c.SitesDir = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	return nil
}

// fill restores defaults for values the file zeroed out.
func (c *Config) fill() {
	d := Default()
	if c.SitesDir == "" {
		c.SitesDir = d.SitesDir
	}
	if c.Database == "" {
		c.Database = d.Database
	}
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = d.HTTPTimeout
	}
	if c.RenderWait <= 0 {
		c.RenderWait = d.RenderWait
	}
	c.LogLevel = strings.ToUpper(c.LogLevel)
}
