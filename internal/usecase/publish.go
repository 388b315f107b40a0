package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/envsync/internal/otel"
	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/promotion/preload"
	"github.com/stacklok/envsync/internal/store"
	"github.com/stacklok/envsync/internal/telemetry"
)

// ErrPublishRolledBack is returned by a transactional publish that recorded
// failures; nothing it wrote is kept
var ErrPublishRolledBack = errors.New("publish rolled back")

// PublishCommand requests a promotion from source to target. An empty
// SourceEnvironmentID selects the organization's development environment.
// Transactional runs every write in one store session that is rolled back
// when any resource fails.
type PublishCommand struct {
	User                promotion.UserContext
	SourceEnvironmentID string
	TargetEnvironmentID string
	Options             promotion.SyncOptions
	Transactional       bool
}

// PublishSummary aggregates a publish response
type PublishSummary struct {
	Resources  int `json:"resources"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// PublishResponse is the result of an environment publish
type PublishResponse struct {
	Results []promotion.SyncResult `json:"results"`
	Summary PublishSummary         `json:"summary"`
}

// PublishEnvironment promotes resources from one environment to another
type PublishEnvironment struct {
	store      store.Store
	strategies StrategyFactory
	tracer     trace.Tracer
	metrics    *telemetry.PromotionMetrics
}

// NewPublishEnvironment creates the publish orchestrator
func NewPublishEnvironment(st store.Store, strategies StrategyFactory, opts ...Option) (*PublishEnvironment, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &PublishEnvironment{
		store:      st,
		strategies: strategies,
		tracer:     o.tracer,
		metrics:    o.metrics,
	}, nil
}

// Execute syncs every resource type and summarizes the outcome. Resource
// failures are reported in the response; only validation, read and
// infrastructure failures are returned as errors.
func (uc *PublishEnvironment) Execute(ctx context.Context, cmd PublishCommand) (resp *PublishResponse, err error) {
	start := time.Now()
	ctx, span := otel.StartSpan(ctx, uc.tracer, "usecase.PublishEnvironment",
		trace.WithAttributes(
			otel.AttrOrganizationID.String(cmd.User.OrganizationID),
			otel.AttrTargetEnvironmentID.String(cmd.TargetEnvironmentID),
			otel.AttrDryRun.Bool(cmd.Options.DryRun),
		),
	)
	defer func() {
		otel.RecordError(span, err)
		span.End()
		uc.metrics.RecordDuration(ctx, telemetry.OperationPublish, time.Since(start), err == nil)
	}()

	resp, err = uc.execute(ctx, cmd)
	if err != nil {
		slog.ErrorContext(ctx, "Environment publish failed",
			"organization_id", cmd.User.OrganizationID,
			"source_environment_id", cmd.SourceEnvironmentID,
			"target_environment_id", cmd.TargetEnvironmentID,
			"dry_run", cmd.Options.DryRun,
			"error", err)
		return nil, err
	}

	for _, result := range resp.Results {
		rt := string(result.ResourceType)
		uc.metrics.RecordResources(ctx, rt, "successful", len(result.Successful))
		uc.metrics.RecordResources(ctx, rt, "failed", len(result.Failed))
		uc.metrics.RecordResources(ctx, rt, "skipped", len(result.Skipped))
	}
	slog.InfoContext(ctx, "Environment published",
		"organization_id", cmd.User.OrganizationID,
		"target_environment_id", cmd.TargetEnvironmentID,
		"dry_run", cmd.Options.DryRun,
		"successful", resp.Summary.Successful,
		"failed", resp.Summary.Failed,
		"skipped", resp.Summary.Skipped)
	return resp, nil
}

func (uc *PublishEnvironment) execute(ctx context.Context, cmd PublishCommand) (*PublishResponse, error) {
	if err := validateSelectors(cmd.Options.Resources); err != nil {
		return nil, err
	}

	orgID := cmd.User.OrganizationID
	source, target, err := resolveEnvironments(ctx, uc.store, orgID, cmd.SourceEnvironmentID, cmd.TargetEnvironmentID)
	if err != nil {
		return nil, err
	}

	strategies, err := uc.strategies(preload.New(uc.store))
	if err != nil {
		return nil, err
	}

	sc := &promotion.SyncContext{
		SourceEnvironmentID: source.ID,
		TargetEnvironmentID: target.ID,
		User:                cmd.User,
		Options:             cmd.Options,
	}

	var results []promotion.SyncResult
	if cmd.Transactional && !cmd.Options.DryRun {
		results, err = uc.syncInSession(ctx, strategies, sc)
	} else {
		results, err = syncConcurrently(ctx, strategies, sc)
	}
	if err != nil {
		return nil, err
	}

	return &PublishResponse{Results: results, Summary: summarize(results)}, nil
}

// syncInSession runs the strategies one after another through a single
// session, in write order
func (uc *PublishEnvironment) syncInSession(
	ctx context.Context, strategies []Strategy, sc *promotion.SyncContext,
) ([]promotion.SyncResult, error) {
	var results []promotion.SyncResult
	err := uc.store.WithSession(ctx, func(ctx context.Context, session store.Session) error {
		scoped := *sc
		scoped.Session = session

		results = results[:0]
		for _, strategy := range strategies {
			result, err := strategy.Sync(ctx, &scoped)
			if err != nil {
				return fmt.Errorf("failed to sync %s resources: %w", strategy.ResourceType(), err)
			}
			results = append(results, *result)
		}

		if failed := summarize(results).Failed; failed > 0 {
			return fmt.Errorf("%w: %d resources failed", ErrPublishRolledBack, failed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func syncConcurrently(
	ctx context.Context, strategies []Strategy, sc *promotion.SyncContext,
) ([]promotion.SyncResult, error) {
	results := make([]promotion.SyncResult, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, strategy := range strategies {
		g.Go(func() error {
			result, err := strategy.Sync(gctx, sc)
			if err != nil {
				return fmt.Errorf("failed to sync %s resources: %w", strategy.ResourceType(), err)
			}
			results[i] = *result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func validateSelectors(selectors []promotion.ResourceSelector) error {
	for _, sel := range selectors {
		if !slices.Contains(SupportedResourceTypes, sel.ResourceType) {
			return fmt.Errorf("%w: unsupported resource type %q", ErrInvalidOptions, sel.ResourceType)
		}
		if sel.ResourceID == "" {
			return fmt.Errorf("%w: empty resource id for type %q", ErrInvalidOptions, sel.ResourceType)
		}
	}
	return nil
}

func summarize(results []promotion.SyncResult) PublishSummary {
	var s PublishSummary
	for _, r := range results {
		s.Resources += r.TotalProcessed
		s.Successful += len(r.Successful)
		s.Failed += len(r.Failed)
		s.Skipped += len(r.Skipped)
	}
	return s
}

// AvailableResources lists the syncable resource identifiers of an environment
type AvailableResources struct {
	store      store.Store
	strategies StrategyFactory
}

// NewAvailableResources creates the available resources query
func NewAvailableResources(st store.Store, strategies StrategyFactory) *AvailableResources {
	return &AvailableResources{store: st, strategies: strategies}
}

// Execute returns the identifiers of every syncable resource of the given type
func (uc *AvailableResources) Execute(
	ctx context.Context, orgID, envID string, resourceType promotion.ResourceType,
) ([]string, error) {
	if _, err := lookupEnvironmentID(ctx, uc.store, orgID, envID); err != nil {
		return nil, err
	}

	strategies, err := uc.strategies(preload.New(uc.store))
	if err != nil {
		return nil, err
	}
	for _, strategy := range strategies {
		if strategy.ResourceType() == resourceType {
			return strategy.AvailableResourceIDs(ctx, envID, orgID)
		}
	}
	return nil, fmt.Errorf("%w: unsupported resource type %q", ErrInvalidOptions, resourceType)
}
