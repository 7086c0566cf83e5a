package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// envPrefix namespaces the environment variables, e.g. STREAMPAY_RELAY_URL.
const envPrefix = "streampay"

// Config holds client configuration. Values come from the environment
// (STREAMPAY_* variables) with defaults, optionally overridden by a YAML
// file.
type Config struct {
	APIBaseURL string `envconfig:"API_BASE_URL" yaml:"api_base_url" validate:"required,url"`
	RelayURL   string `envconfig:"RELAY_URL" yaml:"relay_url" validate:"required,url"`
	AuthToken  string `envconfig:"AUTH_TOKEN" yaml:"auth_token"`

	// TokenDecimals is the smallest-unit scale of the streamed token.
	TokenDecimals uint32 `envconfig:"TOKEN_DECIMALS" yaml:"token_decimals" default:"18"`
	// GasMarginPercent inflates gas estimates on every submission.
	GasMarginPercent int64 `envconfig:"GAS_MARGIN_PERCENT" yaml:"gas_margin_percent" default:"20"`

	ReconnectBaseDelay   time.Duration `envconfig:"RECONNECT_BASE_DELAY" yaml:"reconnect_base_delay" default:"1s"`
	MaxReconnectAttempts int           `envconfig:"MAX_RECONNECT_ATTEMPTS" yaml:"max_reconnect_attempts" default:"5"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process environment config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads configuration from the environment and then overlays the
// YAML file at path, so file values win over environment values.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process environment config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and value sanity.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if c.GasMarginPercent < 0 {
		return errors.New("gas margin percent cannot be negative")
	}
	if c.MaxReconnectAttempts < 0 {
		return errors.New("max reconnect attempts cannot be negative")
	}
	return nil
}
