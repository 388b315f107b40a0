package promotion

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// decisionBatchSize is how many sync decisions are computed concurrently
const decisionBatchSize = 5

// syncDecision is the planned outcome for one source resource
type syncDecision[T any] struct {
	resource T
	sync     bool
	action   SyncAction
	reason   string
}

// SyncOperation promotes one resource type from a source to a target environment
type SyncOperation[T any] struct {
	resourceType ResourceType
	adapters     Adapters[T]
}

// NewSyncOperation creates a SyncOperation over a complete adapter bundle
func NewSyncOperation[T any](resourceType ResourceType, adapters Adapters[T]) (*SyncOperation[T], error) {
	if err := adapters.validate(); err != nil {
		return nil, err
	}
	return &SyncOperation[T]{resourceType: resourceType, adapters: adapters}, nil
}

// AvailableResourceIDs returns the identifiers of every syncable resource of an environment
func (o *SyncOperation[T]) AvailableResourceIDs(ctx context.Context, envID, orgID string) ([]string, error) {
	resources, err := o.adapters.Repository.FetchSyncable(ctx, envID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s resources: %w", o.resourceType, err)
	}

	ids := make([]string, 0, len(resources))
	for _, r := range resources {
		ids = append(ids, o.adapters.Repository.IdentifierOf(r))
	}
	return ids, nil
}

// Execute plans and applies the sync.
//
// Creates and updates run one at a time and stop at the first failure; the
// remaining resources are left unprocessed and deletions are not attempted.
// Deletions of target resources missing from the source are best-effort:
// every failure is recorded and the loop continues.
// In dry-run mode every selected source resource is skipped and neither the
// target is read nor any adapter write is made.
func (o *SyncOperation[T]) Execute(ctx context.Context, sc *SyncContext) (*SyncResult, error) {
	logger := logr.FromContextOrDiscard(ctx).WithValues(
		"resourceType", o.resourceType,
		"sourceEnvironmentId", sc.SourceEnvironmentID,
		"targetEnvironmentId", sc.TargetEnvironmentID,
	)
	repo := o.adapters.Repository
	builder := NewSyncResultBuilder(o.resourceType)

	sources, err := o.fetchSelected(ctx, sc.SourceEnvironmentID, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source %s resources: %w", o.resourceType, err)
	}

	if sc.Options.DryRun {
		for _, source := range sources {
			info := repo.Describe(source)
			builder.AddSkip(repo.IdentifierOf(source), info.Name, SkipReasonDryRun)
		}
		logger.Info("Dry run, no changes applied", "count", len(sources))
		return builder.Build(), nil
	}

	targets, err := o.fetchSelected(ctx, sc.TargetEnvironmentID, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch target %s resources: %w", o.resourceType, err)
	}

	decisions, err := o.decide(ctx, sources, repo.ToMap(targets), sc.User)
	if err != nil {
		return nil, err
	}

	for _, decision := range decisions {
		id := repo.IdentifierOf(decision.resource)
		name := repo.Describe(decision.resource).Name

		if !decision.sync {
			builder.AddSkip(id, name, decision.reason)
			continue
		}

		if err := o.adapters.Sync.ApplyToTarget(ctx, sc, decision.resource); err != nil {
			logger.Error(err, "Failed to sync resource, aborting remaining resources",
				"resourceId", id, "action", decision.action)
			builder.AddFailure(id, name, err)
			return builder.Build(), nil
		}
		builder.AddSuccess(id, name, decision.action)
	}

	if err := o.reconcileDeletions(ctx, sc, sources, builder); err != nil {
		return nil, err
	}

	return builder.Build(), nil
}

// fetchSelected returns the syncable resources of an environment restricted
// to the allow-list, when one is set. An allow-list without entries for this
// resource type selects nothing.
func (o *SyncOperation[T]) fetchSelected(ctx context.Context, envID string, sc *SyncContext) ([]T, error) {
	resources, err := o.fetch(ctx, envID, sc)
	if err != nil {
		return nil, err
	}
	if len(sc.Options.Resources) == 0 {
		return resources, nil
	}

	allowed := make(map[string]struct{})
	for _, sel := range sc.Options.Resources {
		if sel.ResourceType == o.resourceType {
			allowed[sel.ResourceID] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return nil, nil
	}

	return slices.DeleteFunc(resources, func(r T) bool {
		_, ok := allowed[o.adapters.Repository.IdentifierOf(r)]
		return !ok
	}), nil
}

// fetch reads through the sync session when the repository supports it
func (o *SyncOperation[T]) fetch(ctx context.Context, envID string, sc *SyncContext) ([]T, error) {
	orgID := sc.User.OrganizationID
	if sessionRepo, ok := o.adapters.Repository.(SessionRepository[T]); ok && sc.Session != nil {
		return sessionRepo.FetchSyncableFrom(ctx, sc.Session, envID, orgID)
	}
	return o.adapters.Repository.FetchSyncable(ctx, envID, orgID)
}

// decide computes a decision per source resource. Order follows sources.
func (o *SyncOperation[T]) decide(
	ctx context.Context, sources []T, targetMap map[string]T, user UserContext,
) ([]syncDecision[T], error) {
	decisions := make([]syncDecision[T], len(sources))

	for start := 0; start < len(sources); start += decisionBatchSize {
		end := min(start+decisionBatchSize, len(sources))

		batch, bctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			batch.Go(func() error {
				decision, err := o.decideOne(bctx, sources[i], targetMap, user)
				if err != nil {
					return err
				}
				decisions[i] = decision
				return nil
			})
		}
		if err := batch.Wait(); err != nil {
			return nil, err
		}
	}

	return decisions, nil
}

func (o *SyncOperation[T]) decideOne(
	ctx context.Context, source T, targetMap map[string]T, user UserContext,
) (syncDecision[T], error) {
	id := o.adapters.Repository.IdentifierOf(source)

	target, found := targetMap[id]
	if !found {
		return syncDecision[T]{resource: source, sync: true, action: SyncActionCreated}, nil
	}

	comparison, err := o.adapters.Comparator.Compare(ctx, source, target, user)
	if err != nil {
		return syncDecision[T]{}, &Error{ResourceType: o.resourceType, ResourceID: id, Op: "compare", Err: err}
	}
	if !comparison.HasChanges() {
		return syncDecision[T]{
			resource: source,
			action:   SyncActionSkipped,
			reason:   SkipReasonNoChanges,
		}, nil
	}
	return syncDecision[T]{resource: source, sync: true, action: SyncActionUpdated}, nil
}

// reconcileDeletions removes target resources that are absent from the
// selected source set. Resources outside the allow-list are never touched
// because fetchSelected filters the target the same way.
func (o *SyncOperation[T]) reconcileDeletions(
	ctx context.Context, sc *SyncContext, sources []T, builder *SyncResultBuilder,
) error {
	logger := logr.FromContextOrDiscard(ctx).WithValues("resourceType", o.resourceType)
	repo := o.adapters.Repository

	targets, err := o.fetchSelected(ctx, sc.TargetEnvironmentID, sc)
	if err != nil {
		return fmt.Errorf("failed to refetch target %s resources: %w", o.resourceType, err)
	}

	sourceIDs := make(map[string]struct{}, len(sources))
	for _, source := range sources {
		sourceIDs[repo.IdentifierOf(source)] = struct{}{}
	}

	var orphans []T
	for _, target := range targets {
		if _, found := sourceIDs[repo.IdentifierOf(target)]; !found {
			orphans = append(orphans, target)
		}
	}

	for chunk := range slices.Chunk(orphans, sc.Options.GetBatchSize()) {
		logger.V(1).Info("Deleting resources missing from source", "count", len(chunk))
		for _, target := range chunk {
			id := repo.IdentifierOf(target)
			name := repo.Describe(target).Name

			if err := o.adapters.Delete.RemoveFromTarget(ctx, sc, target); err != nil {
				logger.Error(err, "Failed to delete resource from target", "resourceId", id)
				builder.AddFailure(id, name, err)
				continue
			}
			builder.AddSuccess(id, name, SyncActionDeleted)
		}
	}

	return nil
}
