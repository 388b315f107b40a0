package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/envsync/internal/otel"
	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/promotion/dependency"
	"github.com/stacklok/envsync/internal/promotion/preload"
	"github.com/stacklok/envsync/internal/store"
	"github.com/stacklok/envsync/internal/telemetry"
)

// DiffCommand requests the changes a publish from source to target would apply.
// An empty SourceEnvironmentID selects the organization's development environment.
type DiffCommand struct {
	User                promotion.UserContext
	SourceEnvironmentID string
	TargetEnvironmentID string
}

// DiffSummary aggregates a diff response
type DiffSummary struct {
	TotalEntities int  `json:"totalEntities"`
	TotalChanges  int  `json:"totalChanges"`
	HasChanges    bool `json:"hasChanges"`
}

// DiffResponse is the result of an environment diff
type DiffResponse struct {
	SourceEnvironmentID string                 `json:"sourceEnvironmentId"`
	TargetEnvironmentID string                 `json:"targetEnvironmentId"`
	Resources           []promotion.DiffResult `json:"resources"`
	Summary             DiffSummary            `json:"summary"`
}

// DiffEnvironment computes the changes between two environments of an organization
type DiffEnvironment struct {
	store      store.Store
	strategies StrategyFactory
	analyzer   *dependency.Analyzer
	tracer     trace.Tracer
	metrics    *telemetry.PromotionMetrics
}

// NewDiffEnvironment creates the diff orchestrator
func NewDiffEnvironment(st store.Store, strategies StrategyFactory, opts ...Option) (*DiffEnvironment, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &DiffEnvironment{
		store:      st,
		strategies: strategies,
		analyzer:   dependency.NewAnalyzer(st),
		tracer:     o.tracer,
		metrics:    o.metrics,
	}, nil
}

// Execute runs every strategy concurrently, attaches dependencies and summarizes
func (uc *DiffEnvironment) Execute(ctx context.Context, cmd DiffCommand) (resp *DiffResponse, err error) {
	start := time.Now()
	ctx, span := otel.StartSpan(ctx, uc.tracer, "usecase.DiffEnvironment",
		trace.WithAttributes(
			otel.AttrOrganizationID.String(cmd.User.OrganizationID),
			otel.AttrTargetEnvironmentID.String(cmd.TargetEnvironmentID),
		),
	)
	defer func() {
		otel.RecordError(span, err)
		span.End()
		uc.metrics.RecordDuration(ctx, telemetry.OperationDiff, time.Since(start), err == nil)
	}()

	resp, err = uc.execute(ctx, cmd)
	if err != nil {
		slog.ErrorContext(ctx, "Environment diff failed",
			"organization_id", cmd.User.OrganizationID,
			"source_environment_id", cmd.SourceEnvironmentID,
			"target_environment_id", cmd.TargetEnvironmentID,
			"error", err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(resp.Resources)))
	return resp, nil
}

func (uc *DiffEnvironment) execute(ctx context.Context, cmd DiffCommand) (*DiffResponse, error) {
	orgID := cmd.User.OrganizationID
	source, target, err := resolveEnvironments(ctx, uc.store, orgID, cmd.SourceEnvironmentID, cmd.TargetEnvironmentID)
	if err != nil {
		return nil, err
	}

	container := preload.New(uc.store)
	if err := container.Load(ctx, orgID, source.ID, target.ID); err != nil {
		return nil, fmt.Errorf("failed to preload workflows: %w", err)
	}

	strategies, err := uc.strategies(container)
	if err != nil {
		return nil, err
	}

	perType := make([][]promotion.DiffResult, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, strategy := range strategies {
		g.Go(func() error {
			results, err := strategy.Diff(gctx, source.ID, target.ID, orgID, cmd.User)
			if err != nil {
				return fmt.Errorf("failed to diff %s resources: %w", strategy.ResourceType(), err)
			}
			perType[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resources := make([]promotion.DiffResult, 0)
	for _, results := range perType {
		resources = append(resources, results...)
	}

	deps := uc.analyzer.Analyze(ctx, resources, source.ID, target.ID, orgID, container)
	dependency.Attach(resources, deps)

	totals := promotion.TotalSummary(resources)
	return &DiffResponse{
		SourceEnvironmentID: source.ID,
		TargetEnvironmentID: target.ID,
		Resources:           resources,
		Summary: DiffSummary{
			TotalEntities: len(resources),
			TotalChanges:  totals.Changes(),
			HasChanges:    totals.Changes() > 0,
		},
	}, nil
}
