package promotion

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// diffBatchSize is how many resources are compared concurrently
const diffBatchSize = 10

// DiffOperation computes the changes of one resource type between two environments
type DiffOperation[T any] struct {
	resourceType ResourceType
	adapters     Adapters[T]
}

// NewDiffOperation creates a DiffOperation over a complete adapter bundle
func NewDiffOperation[T any](resourceType ResourceType, adapters Adapters[T]) (*DiffOperation[T], error) {
	if err := adapters.validate(); err != nil {
		return nil, err
	}
	return &DiffOperation[T]{resourceType: resourceType, adapters: adapters}, nil
}

// Diff returns one DiffResult per changed resource: source resources first,
// in source order, followed by target-only resources in target order.
// A failure comparing any resource fails the whole call.
func (o *DiffOperation[T]) Diff(
	ctx context.Context, sourceEnvID, targetEnvID, orgID string, user UserContext,
) ([]DiffResult, error) {
	logger := logr.FromContextOrDiscard(ctx).WithValues("resourceType", o.resourceType)
	repo := o.adapters.Repository

	var sources, targets []T
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if sources, err = repo.FetchSyncable(gctx, sourceEnvID, orgID); err != nil {
			return fmt.Errorf("failed to fetch source %s resources: %w", o.resourceType, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if targets, err = repo.FetchSyncable(gctx, targetEnvID, orgID); err != nil {
			return fmt.Errorf("failed to fetch target %s resources: %w", o.resourceType, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	targetMap := repo.ToMap(targets)
	slots := make([]*DiffResult, len(sources))

	for start := 0; start < len(sources); start += diffBatchSize {
		end := min(start+diffBatchSize, len(sources))

		batch, bctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			batch.Go(func() error {
				result, err := o.diffOne(bctx, sources[i], targetMap, user)
				if err != nil {
					return err
				}
				slots[i] = result
				return nil
			})
		}
		if err := batch.Wait(); err != nil {
			return nil, err
		}
	}

	builder := NewDiffResultBuilder(o.resourceType)
	sourceIDs := make(map[string]struct{}, len(sources))
	for i, source := range sources {
		sourceIDs[repo.IdentifierOf(source)] = struct{}{}
		if slots[i] != nil {
			builder.Add(*slots[i])
		}
	}

	for _, target := range targets {
		if _, found := sourceIDs[repo.IdentifierOf(target)]; !found {
			builder.AddDeleted(repo.Describe(target))
		}
	}

	totals := builder.Totals()
	logger.V(1).Info("Computed diff",
		"sourceCount", len(sources),
		"targetCount", len(targets),
		"added", totals.Added,
		"modified", totals.Modified,
		"deleted", totals.Deleted,
	)

	return builder.Build(), nil
}

// diffOne compares a single source resource against its target counterpart.
// It returns nil when nothing changed.
func (o *DiffOperation[T]) diffOne(
	ctx context.Context, source T, targetMap map[string]T, user UserContext,
) (*DiffResult, error) {
	repo := o.adapters.Repository
	id := repo.IdentifierOf(source)
	sourceInfo := repo.Describe(source)

	target, found := targetMap[id]
	if !found {
		result := AddedResult(o.resourceType, sourceInfo)
		added, ok := o.adapters.Comparator.(AdditionComparator[T])
		if !ok {
			return &result, nil
		}
		subDiffs, err := added.CompareAdded(ctx, source, user)
		if err != nil {
			return nil, &Error{ResourceType: o.resourceType, ResourceID: id, Op: "compare", Err: err}
		}
		enrich(subDiffs, &sourceInfo, nil)
		result.Changes = append(result.Changes, subDiffs...)
		return &result, nil
	}

	comparison, err := o.adapters.Comparator.Compare(ctx, source, target, user)
	if err != nil {
		return nil, &Error{ResourceType: o.resourceType, ResourceID: id, Op: "compare", Err: err}
	}
	if !comparison.HasChanges() {
		return nil, nil
	}

	targetInfo := repo.Describe(target)
	changes := make([]ResourceDiff, 0, len(comparison.SubDiffs)+1)
	if comparison.RootDiff != nil {
		changes = append(changes, ResourceDiff{
			SourceResource: sourceInfo.clone(),
			TargetResource: targetInfo.clone(),
			ResourceType:   o.resourceType,
			Action:         ActionModified,
			Diffs:          comparison.RootDiff,
		})
	}
	changes = append(changes, comparison.SubDiffs...)
	enrich(changes, &sourceInfo, &targetInfo)

	result := ModifiedResult(o.resourceType, sourceInfo, targetInfo, changes)
	return &result, nil
}

// enrich copies the owning resource's updated-by/updated-at onto every change
// that does not carry its own
func enrich(changes []ResourceDiff, source, target *ResourceInfo) {
	for i := range changes {
		changes[i].SourceResource = withAudit(changes[i].SourceResource, source)
		changes[i].TargetResource = withAudit(changes[i].TargetResource, target)
	}
}

func withAudit(info, owner *ResourceInfo) *ResourceInfo {
	if info == nil || owner == nil {
		return info
	}
	enriched := info.clone()
	if enriched.UpdatedBy == nil {
		enriched.UpdatedBy = owner.UpdatedBy
	}
	if enriched.UpdatedAt == nil {
		enriched.UpdatedAt = owner.UpdatedAt
	}
	return enriched
}
