package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, DefaultServiceName, cfg.GetServiceName())
	assert.Equal(t, "unknown", cfg.GetServiceVersion())
	assert.Equal(t, DefaultEndpoint, cfg.GetEndpoint())
	assert.Equal(t, DefaultSampling, (&TracingConfig{}).GetSampling())

	cfg = &Config{ServiceName: "svc", ServiceVersion: "1.2.3", Endpoint: "otel:4318"}
	assert.Equal(t, "svc", cfg.GetServiceName())
	assert.Equal(t, "1.2.3", cfg.GetServiceVersion())
	assert.Equal(t, "otel:4318", cfg.GetEndpoint())
	assert.Equal(t, 0.5, (&TracingConfig{Sampling: 0.5}).GetSampling())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{name: "nil config", config: nil},
		{name: "disabled ignores bad sampling", config: &Config{Tracing: &TracingConfig{Enabled: true, Sampling: 2}}},
		{name: "valid sampling", config: &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: 1}}},
		{name: "no tracing section", config: &Config{Enabled: true, Metrics: &MetricsConfig{Enabled: true}}},
		{name: "tracing disabled ignores bad sampling", config: &Config{Enabled: true, Tracing: &TracingConfig{Sampling: 3}}},
		{
			name:    "sampling above one",
			config:  &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: 1.5}},
			wantErr: "sampling must be between 0.0 and 1.0",
		},
		{
			name:    "negative sampling",
			config:  &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: -0.1}},
			wantErr: "tracing: sampling must be between 0.0 and 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfigEnabledSwitches(t *testing.T) {
	t.Parallel()

	var nilCfg *Config
	assert.False(t, nilCfg.tracingEnabled())
	assert.False(t, nilCfg.metricsEnabled())

	cfg := &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true}}
	assert.True(t, cfg.tracingEnabled())
	assert.False(t, cfg.metricsEnabled())

	cfg.Enabled = false
	assert.False(t, cfg.tracingEnabled())
}
