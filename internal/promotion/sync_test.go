package promotion

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncContext(opts SyncOptions) *SyncContext {
	return &SyncContext{
		SourceEnvironmentID: "src",
		TargetEnvironmentID: "tgt",
		User:                UserContext{UserID: "u1", OrganizationID: "org"},
		Options:             opts,
	}
}

func successIDs(result *SyncResult) []string {
	ids := make([]string, 0, len(result.Successful))
	for _, s := range result.Successful {
		ids = append(ids, fmt.Sprintf("%s:%s", s.Action, s.ResourceID))
	}
	return ids
}

func TestSyncAppliesCreatesUpdatesAndDeletions(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(map[string][]item{
		"src": {{ID: "a", Value: "1"}, {ID: "b", Value: "new"}, {ID: "c", Value: "same"}},
		"tgt": {{ID: "b", Value: "old"}, {ID: "c", Value: "same"}, {ID: "z"}},
	})
	w := &fakeWriter{}
	op, err := NewSyncOperation(ResourceTypeLayout, newAdapters(repo, &fakeComparator{}, w))
	require.NoError(t, err)

	result, err := op.Execute(context.Background(), syncContext(SyncOptions{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"created:a", "updated:b", "deleted:z"}, successIDs(result))
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipReasonNoChanges, result.Skipped[0].Reason)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, []string{"a", "b"}, w.applied)
	assert.Equal(t, []string{"z"}, w.deleted)
}

func TestSyncDryRunNeverWrites(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(map[string][]item{
		"src": {{ID: "a"}, {ID: "b"}},
		"tgt": {{ID: "z"}},
	})
	w := &fakeWriter{}
	op, err := NewSyncOperation(ResourceTypeWorkflow, newAdapters(repo, &fakeComparator{}, w))
	require.NoError(t, err)

	result, err := op.Execute(context.Background(), syncContext(SyncOptions{DryRun: true}))
	require.NoError(t, err)

	require.Len(t, result.Skipped, 2)
	for _, s := range result.Skipped {
		assert.Equal(t, SkipReasonDryRun, s.Reason)
	}
	assert.Empty(t, result.Successful)
	assert.Empty(t, w.applied)
	assert.Empty(t, w.deleted)
	assert.Zero(t, repo.fetchCount("tgt"))
}

func TestSyncStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(map[string][]item{
		"src": {{ID: "a"}, {ID: "b"}, {ID: "c"}},
		"tgt": {{ID: "z"}},
	})
	w := &fakeWriter{fail: map[string]error{"b": fmt.Errorf("write b: %w", errBoom)}}
	op, err := NewSyncOperation(ResourceTypeLayout, newAdapters(repo, &fakeComparator{}, w))
	require.NoError(t, err)

	result, err := op.Execute(context.Background(), syncContext(SyncOptions{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"created:a"}, successIDs(result))
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "b", result.Failed[0].ResourceID)
	assert.Contains(t, result.Failed[0].Stack, "boom")
	// c is left unprocessed and deletions are not attempted
	assert.Equal(t, []string{"a"}, w.applied)
	assert.Empty(t, w.deleted)
	assert.Equal(t, 2, result.TotalProcessed)
}

func TestSyncDeletionsAreBestEffort(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(map[string][]item{
		"tgt": {{ID: "x"}, {ID: "y"}, {ID: "z"}},
	})
	w := &fakeWriter{fail: map[string]error{"y": errBoom}}
	op, err := NewSyncOperation(ResourceTypeLayout, newAdapters(repo, &fakeComparator{}, w))
	require.NoError(t, err)

	result, err := op.Execute(context.Background(), syncContext(SyncOptions{BatchSize: 2}))
	require.NoError(t, err)

	assert.Equal(t, []string{"deleted:x", "deleted:z"}, successIDs(result))
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "y", result.Failed[0].ResourceID)
}

func TestSyncSelectiveResources(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(map[string][]item{
		"src": {{ID: "a"}, {ID: "b"}},
		"tgt": {{ID: "gone"}, {ID: "keep"}},
	})

	t.Run("only selected resources are written or deleted", func(t *testing.T) {
		t.Parallel()

		w := &fakeWriter{}
		op, err := NewSyncOperation(ResourceTypeLayout, newAdapters(repo, &fakeComparator{}, w))
		require.NoError(t, err)

		result, err := op.Execute(context.Background(), syncContext(SyncOptions{Resources: []ResourceSelector{
			{ResourceType: ResourceTypeLayout, ResourceID: "b"},
			{ResourceType: ResourceTypeLayout, ResourceID: "gone"},
			{ResourceType: ResourceTypeWorkflow, ResourceID: "a"},
		}}))
		require.NoError(t, err)

		assert.Equal(t, []string{"created:b", "deleted:gone"}, successIDs(result))
		assert.Equal(t, []string{"b"}, w.applied)
		assert.Equal(t, []string{"gone"}, w.deleted)
	})

	t.Run("no selector for this type selects nothing", func(t *testing.T) {
		t.Parallel()

		w := &fakeWriter{}
		op, err := NewSyncOperation(ResourceTypeLayout, newAdapters(repo, &fakeComparator{}, w))
		require.NoError(t, err)

		result, err := op.Execute(context.Background(), syncContext(SyncOptions{Resources: []ResourceSelector{
			{ResourceType: ResourceTypeWorkflow, ResourceID: "a"},
		}}))
		require.NoError(t, err)
		assert.Zero(t, result.TotalProcessed)
		assert.Empty(t, w.deleted)
	})
}

func TestSyncCompareFailureAborts(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(map[string][]item{
		"src": {{ID: "a", Value: "1"}},
		"tgt": {{ID: "a", Value: "2"}},
	})
	w := &fakeWriter{}
	op, err := NewSyncOperation(ResourceTypeLayout, newAdapters(repo, &fakeComparator{errs: map[string]error{"a": errBoom}}, w))
	require.NoError(t, err)

	_, err = op.Execute(context.Background(), syncContext(SyncOptions{}))
	require.ErrorIs(t, err, errBoom)
	assert.Empty(t, w.applied)
}

func TestAvailableResourceIDs(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(map[string][]item{"env": {{ID: "a"}, {ID: "b"}}})
	op, err := NewSyncOperation(ResourceTypeLayout, newAdapters(repo, &fakeComparator{}, &fakeWriter{}))
	require.NoError(t, err)

	ids, err := op.AvailableResourceIDs(context.Background(), "env", "org")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	repo.fetchErrs["broken"] = errBoom
	_, err = op.AvailableResourceIDs(context.Background(), "broken", "org")
	require.ErrorIs(t, err, errBoom)
}
