package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{name: "nil config yields no-op providers"},
		{name: "disabled config yields no-op providers", config: &Config{Enabled: false}},
		{
			name: "enabled without signals yields no-op providers",
			config: &Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: false},
				Metrics: &MetricsConfig{Enabled: false},
			},
		},
		{
			name:    "invalid sampling is rejected",
			config:  &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: 3}},
			wantErr: "invalid telemetry configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tel, err := New(context.Background(), tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer func() { require.NoError(t, tel.Shutdown(context.Background())) }()

			assert.IsType(t, tracenoop.TracerProvider{}, tel.TracerProvider())
			assert.IsType(t, metricnoop.MeterProvider{}, tel.MeterProvider())
			assert.NotNil(t, tel.Tracer("test"))
		})
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	t.Parallel()

	tel, err := New(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, tel.Shutdown(context.Background()))
	require.NoError(t, tel.Shutdown(context.Background()))
}
