// Package config handles loading and parsing application configuration.
// It supports two sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/aanand-mishra/readmission-client/internal/render"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"prod"`

	// HTTPServer is embedded (not a pointer) so cfg.Addr works as well as
	// cfg.HTTPServer.Addr.
	HTTPServer `yaml:"http_server"`

	Predictor Predictor `yaml:"predictor"`

	// RiskTiers colors prediction results. Empty means render.DefaultTiers.
	RiskTiers []render.Tier `yaml:"risk_tiers"`
}

// HTTPServer holds settings for the frontend server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8080".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8080"`
}

// Predictor holds settings for the prediction backend.
type Predictor struct {
	// BaseURL is where POST /predict is sent, e.g. "http://localhost:5000".
	BaseURL string `yaml:"base_url" env:"PREDICTOR_BASE_URL" env-required:"true"`

	// Timeout bounds a single exchange. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" env:"PREDICTOR_TIMEOUT" env-default:"0s"`
}

// Tiers returns the configured risk tiers, or the defaults when none are set.
func (c *Config) Tiers() []render.Tier {
	if len(c.RiskTiers) == 0 {
		return render.DefaultTiers()
	}
	return c.RiskTiers
}

// Load reads the config file at path. An empty path reads the environment
// only, which is enough when PREDICTOR_BASE_URL is set.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read env: %w", err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config.Load: config file does not exist: %s", path)
	}

	// cleanenv.ReadConfig reads the YAML file, then applies env overrides,
	// env-default values and env-required checks.
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
	}
	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to fatal on failure: if this
// returns, the config is valid.
func MustLoad() *Config {
	// ── Source 1: environment variable ───────────────────────────────
	configPath := os.Getenv("CONFIG_PATH")

	// ── Source 2: command-line flag ───────────────────────────────────
	//   go run ./cmd/readmission-client --config=config/local.yaml
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	return cfg
}
