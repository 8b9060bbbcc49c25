package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tb0hdan/shodan-mcp/pkg/types"
	"gopkg.in/yaml.v3"
)

const (
	DefaultShodanURL = "https://api.shodan.io"
	DefaultCVEDBURL  = "https://cvedb.shodan.io"

	EnvAPIKey    = "SHODAN_API_KEY"
	EnvShodanURL = "SHODAN_API_URL"
	EnvCVEDBURL  = "CVEDB_API_URL"
)

// ErrMissingAPIKey is returned by Load when no API key is set in the environment.
var ErrMissingAPIKey = errors.New(EnvAPIKey + " environment variable is required")

// Config is built once at startup and handed to the upstream client.
type Config struct {
	APIKey        string        `yaml:"-" validate:"required"`
	ShodanURL     string        `yaml:"shodan_url" validate:"required,url"`
	CVEDBURL      string        `yaml:"cvedb_url" validate:"required,url"`
	ShodanTimeout time.Duration `yaml:"shodan_timeout" validate:"min=0"`
	CVEDBTimeout  time.Duration `yaml:"cvedb_timeout" validate:"min=0"`
	UserAgent     string        `yaml:"user_agent"`
}

// Default returns the configuration used when neither file nor env override anything.
func Default() Config {
	return Config{
		ShodanURL:     DefaultShodanURL,
		CVEDBURL:      DefaultCVEDBURL,
		ShodanTimeout: types.ShodanTimeout,
		UserAgent:     "shodan-mcp",
	}
}

// Load applies defaults, the optional YAML file at path and then the
// environment read through getenv. The API key only comes from the environment.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.APIKey = strings.TrimSpace(getenv(EnvAPIKey))
	if v := strings.TrimSpace(getenv(EnvShodanURL)); v != "" {
		cfg.ShodanURL = v
	}
	if v := strings.TrimSpace(getenv(EnvCVEDBURL)); v != "" {
		cfg.CVEDBURL = v
	}

	cfg.ShodanURL = strings.TrimRight(cfg.ShodanURL, "/")
	cfg.CVEDBURL = strings.TrimRight(cfg.CVEDBURL, "/")

	if cfg.APIKey == "" {
		return Config{}, ErrMissingAPIKey
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
