package promotion

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/envsync/internal/domain"
)

func TestNewDiffOperationRequiresAdapters(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(nil)
	w := &fakeWriter{}
	tests := []struct {
		name     string
		adapters Adapters[item]
		missing  string
	}{
		{name: "repository", adapters: Adapters[item]{Comparator: &fakeComparator{}, Sync: w, Delete: w}, missing: "repository"},
		{name: "comparator", adapters: Adapters[item]{Repository: repo, Sync: w, Delete: w}, missing: "comparator"},
		{name: "sync", adapters: Adapters[item]{Repository: repo, Comparator: &fakeComparator{}, Delete: w}, missing: "sync"},
		{name: "delete", adapters: Adapters[item]{Repository: repo, Comparator: &fakeComparator{}, Sync: w}, missing: "delete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewDiffOperation(ResourceTypeLayout, tt.adapters)
			require.ErrorIs(t, err, ErrMissingAdapter)
			assert.Contains(t, err.Error(), tt.missing)

			_, err = NewSyncOperation(ResourceTypeLayout, tt.adapters)
			require.ErrorIs(t, err, ErrMissingAdapter)
		})
	}
}

func TestDiffClassifiesResources(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(map[string][]item{
		"src": {{ID: "a", Name: "A", Value: "1"}, {ID: "b", Name: "B", Value: "new"}, {ID: "c", Name: "C", Value: "same"}},
		"tgt": {{ID: "z", Name: "Z"}, {ID: "b", Name: "B", Value: "old"}, {ID: "c", Name: "C", Value: "same"}, {ID: "y", Name: "Y"}},
	})
	op, err := NewDiffOperation(ResourceTypeLayout, newAdapters(repo, &fakeComparator{}, &fakeWriter{}))
	require.NoError(t, err)

	results, err := op.Diff(context.Background(), "src", "tgt", "org", UserContext{})
	require.NoError(t, err)

	// source order first, then target-only in target order; unchanged omitted
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ResourceID())
	}
	assert.Equal(t, []string{"a", "b", "z", "y"}, ids)

	assert.True(t, results[0].IsAddition())
	assert.Equal(t, DiffSummary{Added: 1}, results[0].Summary)
	require.Len(t, results[0].Changes, 1)
	assert.Equal(t, ActionAdded, results[0].Changes[0].Action)

	assert.Equal(t, DiffSummary{Modified: 1}, results[1].Summary)
	require.Len(t, results[1].Changes, 1)
	assert.Equal(t, &ValueDiff{Previous: "old", New: "new"}, results[1].Changes[0].Diffs)

	assert.True(t, results[2].IsDeletion())
	assert.Equal(t, DiffSummary{Deleted: 1}, results[2].Summary)
	assert.Equal(t, ActionDeleted, results[2].Changes[0].Action)
}

func TestDiffPreservesOrderAcrossBatches(t *testing.T) {
	t.Parallel()

	var sources []item
	for i := range diffBatchSize*2 + 3 {
		sources = append(sources, item{ID: fmt.Sprintf("r%02d", i), Value: "v"})
	}
	repo := newFakeRepo(map[string][]item{"src": sources})
	op, err := NewDiffOperation(ResourceTypeWorkflow, newAdapters(repo, &fakeComparator{}, &fakeWriter{}))
	require.NoError(t, err)

	results, err := op.Diff(context.Background(), "src", "tgt", "org", UserContext{})
	require.NoError(t, err)
	require.Len(t, results, len(sources))
	for i, r := range results {
		assert.Equal(t, sources[i].ID, r.ResourceID())
	}
}

func TestDiffFailures(t *testing.T) {
	t.Parallel()

	t.Run("fetch failure", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo(nil)
		repo.fetchErrs["tgt"] = errBoom
		op, err := NewDiffOperation(ResourceTypeLayout, newAdapters(repo, &fakeComparator{}, &fakeWriter{}))
		require.NoError(t, err)

		_, err = op.Diff(context.Background(), "src", "tgt", "org", UserContext{})
		require.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "target")
	})

	t.Run("compare failure fails the whole diff", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo(map[string][]item{
			"src": {{ID: "a", Value: "1"}, {ID: "b", Value: "1"}},
			"tgt": {{ID: "a", Value: "2"}, {ID: "b", Value: "2"}},
		})
		cmp := &fakeComparator{errs: map[string]error{"b": errBoom}}
		op, err := NewDiffOperation(ResourceTypeLayout, newAdapters(repo, cmp, &fakeWriter{}))
		require.NoError(t, err)

		_, err = op.Diff(context.Background(), "src", "tgt", "org", UserContext{})
		require.ErrorIs(t, err, errBoom)

		var perr *Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "b", perr.ResourceID)
		assert.Equal(t, "compare", perr.Op)
	})
}

func TestDiffEnrichesSubDiffAudit(t *testing.T) {
	t.Parallel()

	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &auditRepo{fakeRepo: newFakeRepo(map[string][]item{
		"src": {{ID: "a", Value: "1"}},
		"tgt": {{ID: "a", Value: "2"}},
	}), at: updated}
	adapters := Adapters[item]{Repository: repo, Comparator: &fakeComparator{subDiff: true}, Sync: &fakeWriter{}, Delete: &fakeWriter{}}
	op, err := NewDiffOperation(ResourceTypeWorkflow, adapters)
	require.NoError(t, err)

	results, err := op.Diff(context.Background(), "src", "tgt", "org", UserContext{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Changes, 2)
	// one modification no matter how many step diffs
	assert.Equal(t, DiffSummary{Modified: 1}, results[0].Summary)

	step := results[0].Changes[1]
	assert.Equal(t, ResourceTypeStep, step.ResourceType)
	require.NotNil(t, step.SourceResource.UpdatedBy)
	assert.Equal(t, "user-a", step.SourceResource.UpdatedBy.ID)
	assert.Equal(t, updated, *step.TargetResource.UpdatedAt)
}

type auditRepo struct {
	*fakeRepo
	at time.Time
}

func (r *auditRepo) Describe(resource item) ResourceInfo {
	at := r.at
	return ResourceInfo{ID: resource.ID, UpdatedBy: &domain.UserRef{ID: "user-" + resource.ID}, UpdatedAt: &at}
}
