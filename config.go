package influxline

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config contains client connection settings.
// Configuration can be built in code or loaded from YAML with
// environment variable overrides via LoadConfig.
type Config struct {
	// URL is the base URL of the server, e.g. "http://localhost:8086".
	URL string `yaml:"url"`

	// Username and Password are sent as credentials on every request
	// when Username is non-empty.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Timeout is the per-request HTTP timeout in seconds.
	// Default: 5
	Timeout int `yaml:"timeout"`

	// RetentionPolicy is substituted when Write is called without one.
	// Default: "default"
	RetentionPolicy string `yaml:"retention_policy"`

	// Logger receives scheduler-side flush failures and the shutdown
	// counter summary. Defaults to slog.Default().
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
// At minimum, URL should be reviewed before connecting.
func DefaultConfig() Config {
	return Config{
		URL:             "http://localhost:8086",
		Timeout:         5,
		RetentionPolicy: fallbackRetentionPolicy,
	}
}

// LoadConfig reads configuration from a YAML file and applies
// environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: INFLUXLINE_KEY
// For example: INFLUXLINE_URL, INFLUXLINE_USERNAME, INFLUXLINE_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables follow the pattern: INFLUXLINE_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INFLUXLINE_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("INFLUXLINE_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("INFLUXLINE_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("INFLUXLINE_TIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			cfg.Timeout = timeout
		}
	}
	if v := os.Getenv("INFLUXLINE_RETENTION_POLICY"); v != "" {
		cfg.RetentionPolicy = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidConfig)
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("%w: parsing url: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url scheme must be http or https", ErrInvalidConfig)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url host is required", ErrInvalidConfig)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}

	return nil
}
