package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/amoebajs/builder-sub000/internal/publish"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PagesPath        string // page .hcl files
	CompositionsPath string // declared composition .hcl files, optional
	OutputDir        string // empty writes documents to the output writer
	Provider         string

	LogFormat string
	LogLevel  string

	PublishURL       string
	PublishTransport string // "socketio" or "webhook"
	PublishEvent     string
	PublishNamespace string
	Debounce         time.Duration
}

const DefaultProvider = "react"

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PagesPath == "" {
		return nil, errors.New("PagesPath is a required configuration field and cannot be empty")
	}
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json", "pretty":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text', 'json' or 'pretty'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn' or 'error'", cfg.LogLevel)
	}
	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("debounce must not be negative, got %s", cfg.Debounce)
	}
	switch cfg.PublishTransport {
	case "":
		cfg.PublishTransport = publish.TransportSocketIO
	case publish.TransportSocketIO, publish.TransportWebhook:
	default:
		return nil, fmt.Errorf("invalid publish transport %q: must be 'socketio' or 'webhook'", cfg.PublishTransport)
	}
	if cfg.PublishURL != "" {
		u, err := url.Parse(cfg.PublishURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid publish URL %q: must be an absolute URL", cfg.PublishURL)
		}
	}
	return &cfg, nil
}

// sourcePaths lists every path the loader reads.
func (c *Config) sourcePaths() []string {
	paths := []string{c.PagesPath}
	if c.CompositionsPath != "" && c.CompositionsPath != c.PagesPath {
		paths = append(paths, c.CompositionsPath)
	}
	return paths
}
