package gstctl

import (
	"fmt"

	"github.com/kbukum/gstclient/config"
	"github.com/kbukum/gstclient/gstd"
	"github.com/kbukum/gstclient/observability"
	"github.com/kbukum/gstclient/validation"
	"github.com/kbukum/gstclient/version"
)

const serviceName = "gstctl"

// envPrefixes limits environment binding to the sections gstctl owns.
var envPrefixes = []string{"GSTD_", "LOGGING_", "TRACING_", "METRICS_"}

// Config is the gstctl configuration file layout.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Gstd    gstd.Config                `yaml:"gstd" mapstructure:"gstd"`
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// DefaultConfig returns the configuration used when no file or variable
// overrides a field.
func DefaultConfig() Config {
	cfg := Config{
		ServiceConfig: config.ServiceConfig{Name: serviceName},
		Gstd:          gstd.DefaultConfig(),
		Tracing:       observability.DefaultTracerConfig(),
		Metrics:       observability.DefaultMeterConfig(),
	}
	cfg.Logging.Level = "error"
	return cfg
}

func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Gstd.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return validation.Validate(c)
}

// ServiceInfo identifies gstctl to the telemetry backends.
func (c *Config) ServiceInfo() observability.ServiceInfo {
	return observability.ServiceInfo{
		Name:        c.Name,
		Version:     version.GetShortVersion(),
		Environment: c.Environment,
	}
}

// LoadConfig reads the config file (explicit or discovered), .env files and
// GSTD_/LOGGING_/TRACING_/METRICS_ variables on top of DefaultConfig.
func LoadConfig(file string, opts ...config.LoaderOption) (*Config, error) {
	cfg := DefaultConfig()
	opts = append([]config.LoaderOption{
		config.WithConfigFile(file),
		config.WithEnvPrefixes(envPrefixes...),
	}, opts...)
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
