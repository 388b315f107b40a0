package telemetry

import (
	"errors"
	"fmt"
)

const (
	// DefaultServiceName is the default service name for telemetry
	DefaultServiceName = "envsync"

	// DefaultEndpoint is the default OTLP endpoint for telemetry
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling is the default trace sampling rate (5%)
	DefaultSampling = 0.05
)

// Config represents the telemetry section of the envsync configuration
type Config struct {
	// Enabled controls whether telemetry is enabled globally
	// When false, no providers are created and the no-op globals stay in place
	Enabled bool `yaml:"enabled"`

	// ServiceName identifies the service in exported spans and metrics
	// Defaults to "envsync" if not specified
	ServiceName string `yaml:"serviceName,omitempty"`

	// ServiceVersion is reported alongside the service name
	// Defaults to the application version if not specified
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is the OTLP HTTP collector endpoint
	// Defaults to "localhost:4318" if not specified
	// Format: "host:port", the exporters append /v1/traces and /v1/metrics
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure allows HTTP connections instead of HTTPS
	// Only meant for local collectors
	Insecure bool `yaml:"insecure,omitempty"`

	// Tracing holds tracing-specific settings, tracing is off when nil
	Tracing *TracingConfig `yaml:"tracing,omitempty"`

	// Metrics holds metrics-specific settings, metrics are off when nil
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig defines tracing-specific configuration
type TracingConfig struct {
	// Enabled controls whether spans are exported
	// Has no effect unless telemetry is enabled globally
	Enabled bool `yaml:"enabled"`

	// Sampling is the parent-based trace sampling ratio (0.0 to 1.0)
	// 1.0 samples every trace, 0.25 samples a quarter of them
	// Defaults to DefaultSampling if not specified
	Sampling float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig defines metrics-specific configuration
type MetricsConfig struct {
	// Enabled controls whether the diff and publish instruments are exported
	// Has no effect unless telemetry is enabled globally
	Enabled bool `yaml:"enabled"`
}

// GetServiceName returns the service name, using default if not specified
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetServiceVersion returns the service version, using "unknown" if not specified
func (c *Config) GetServiceVersion() string {
	if c.ServiceVersion == "" {
		return "unknown"
	}
	return c.ServiceVersion
}

// GetEndpoint returns the endpoint, using default if not specified
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// tracingEnabled reports whether spans should be exported
func (c *Config) tracingEnabled() bool {
	return c != nil && c.Enabled && c.Tracing != nil && c.Tracing.Enabled
}

// metricsEnabled reports whether metrics should be exported
func (c *Config) metricsEnabled() bool {
	return c != nil && c.Enabled && c.Metrics != nil && c.Metrics.Enabled
}

// GetSampling returns the sampling ratio.
// A zero Sampling returns DefaultSampling: YAML cannot tell an omitted
// value from an explicit 0, so an explicit 0 is not supported.
// Validate before calling.
func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == 0.0 {
		return DefaultSampling
	}
	return c.Sampling
}

// Validate validates the telemetry configuration
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil // disabled telemetry needs no further validation
	}

	var errs []error
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}
	return errors.Join(errs...)
}

// Validate validates the tracing configuration. A nil or disabled config is valid.
func (c *TracingConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.Sampling < 0 || c.Sampling > 1.0 {
		return fmt.Errorf("sampling must be between 0.0 and 1.0, got %f", c.Sampling)
	}
	return nil
}
