package promotion

//go:generate mockgen -destination=mocks/mock_adapters.go -package=mocks -source=adapters.go

import (
	"context"

	"github.com/stacklok/envsync/internal/store"
)

// Repository fetches promotable resources of one type
type Repository[T any] interface {
	// FetchSyncable returns every resource of the environment eligible for promotion
	FetchSyncable(ctx context.Context, envID, orgID string) ([]T, error)
	// ToMap indexes resources by their stable identifier
	ToMap(resources []T) map[string]T
	// IdentifierOf returns the stable cross-environment identifier of a resource
	IdentifierOf(resource T) string
	// Describe returns the resource metadata shown in diffs and sync results
	Describe(resource T) ResourceInfo
}

// SessionRepository is optionally implemented by repositories that can read
// through a caller supplied reader. A sync running in a session fetches
// through it so its reads share the session's transaction.
type SessionRepository[T any] interface {
	FetchSyncableFrom(ctx context.Context, reader store.Reader, envID, orgID string) ([]T, error)
}

// Comparator compares two versions of the same logical resource
type Comparator[T any] interface {
	Compare(ctx context.Context, source, target T, user UserContext) (*Comparison, error)
}

// AdditionComparator is optionally implemented by comparators of resources
// with sub-resources. It reports the sub-resource diffs of a resource that
// only exists in the source, listed after the resource's own added entry.
type AdditionComparator[T any] interface {
	CompareAdded(ctx context.Context, source T, user UserContext) ([]ResourceDiff, error)
}

// Syncer creates or updates one resource in the target environment
type Syncer[T any] interface {
	ApplyToTarget(ctx context.Context, sc *SyncContext, resource T) error
}

// Deleter removes one resource from the target environment
type Deleter[T any] interface {
	RemoveFromTarget(ctx context.Context, sc *SyncContext, resource T) error
}

// Adapters bundles the per-type collaborators the generic operations run on
type Adapters[T any] struct {
	Repository Repository[T]
	Comparator Comparator[T]
	Sync       Syncer[T]
	Delete     Deleter[T]
}

func (a Adapters[T]) validate() error {
	switch {
	case a.Repository == nil:
		return errMissingAdapter("repository")
	case a.Comparator == nil:
		return errMissingAdapter("comparator")
	case a.Sync == nil:
		return errMissingAdapter("sync")
	case a.Delete == nil:
		return errMissingAdapter("delete")
	}
	return nil
}

// IndexBy builds an identifier-keyed map. Repositories use it to implement ToMap.
func IndexBy[T any](resources []T, identifierOf func(T) string) map[string]T {
	out := make(map[string]T, len(resources))
	for _, r := range resources {
		out[identifierOf(r)] = r
	}
	return out
}
