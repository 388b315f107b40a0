package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/envsync/internal/config"
	"github.com/stacklok/envsync/internal/db"
	"github.com/stacklok/envsync/internal/store/postgres"
	"github.com/stacklok/envsync/internal/telemetry"
	"github.com/stacklok/envsync/internal/translation"
	"github.com/stacklok/envsync/internal/usecase"
	"github.com/stacklok/envsync/internal/versions"
)

const tracerName = "github.com/stacklok/envsync/usecase"

// components are the long-lived dependencies shared by serve, diff and publish
type components struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	store     *postgres.Store
	telemetry *telemetry.Telemetry
	diff      *usecase.DiffEnvironment
	publish   *usecase.PublishEnvironment
	resources *usecase.AvailableResources
}

// loadConfig loads the optional configuration file with ENVSYNC_* overrides
func loadConfig(path string) (*config.Config, error) {
	opts := []config.Option{config.WithEnvOverrides()}
	if path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}
	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required")
	}
	return cfg, nil
}

// buildComponents wires the store, telemetry and orchestrators. The caller
// must call close.
func buildComponents(ctx context.Context, cfg *config.Config) (_ *components, err error) {
	c := &components{cfg: cfg}
	defer func() {
		if err != nil {
			c.close(context.WithoutCancel(ctx))
		}
	}()

	if cfg.Telemetry != nil && cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = versions.GetVersionInfo().Version
	}
	if c.telemetry, err = telemetry.New(ctx, cfg.Telemetry); err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	tracer := c.telemetry.Tracer(tracerName)

	if c.pool, err = db.NewPool(ctx, cfg.Database); err != nil {
		return nil, err
	}
	if c.store, err = postgres.New(c.pool,
		postgres.WithTracer(c.telemetry.Tracer(postgres.TracerName)),
	); err != nil {
		return nil, err
	}

	compiled, err := cfg.Promotion.CompareRules.Compile()
	if err != nil {
		return nil, fmt.Errorf("invalid compare rules: %w", err)
	}
	translations := translation.Resolve(nil, cfg.Promotion.Features())
	strategies := usecase.NewStrategyFactory(c.store, usecase.CompareRules{
		Workflow: compiled.Workflow,
		Step:     compiled.Step,
		Layout:   compiled.Layout,
	}, translations)

	metrics, err := telemetry.NewPromotionMetrics(c.telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create promotion metrics: %w", err)
	}
	opts := []usecase.Option{usecase.WithTracer(tracer), usecase.WithMetrics(metrics)}

	if c.diff, err = usecase.NewDiffEnvironment(c.store, strategies, opts...); err != nil {
		return nil, err
	}
	if c.publish, err = usecase.NewPublishEnvironment(c.store, strategies, opts...); err != nil {
		return nil, err
	}
	c.resources = usecase.NewAvailableResources(c.store, strategies)
	return c, nil
}

func (c *components) close(ctx context.Context) {
	if c.pool != nil {
		c.pool.Close()
	}
	if c.telemetry != nil {
		if err := c.telemetry.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(ctx, "Failed to shutdown telemetry", "error", err)
		}
	}
}
