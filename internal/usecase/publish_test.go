package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/store"
)

func newPublishUseCase(t *testing.T, st store.Store) *PublishEnvironment {
	t.Helper()
	uc, err := NewPublishEnvironment(st, NewStrategyFactory(st, CompareRules{}, nil))
	require.NoError(t, err)
	return uc
}

func publishCommand() PublishCommand {
	return PublishCommand{User: testUser(), TargetEnvironmentID: prodEnvID}
}

func TestPublishEnvironment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newEnvStore()
	seedLayout(t, st, devEnvID, "dl1", "main")
	seedWorkflow(t, st, devEnvID, "dw1", "welcome", "main")
	seedWorkflow(t, st, prodEnvID, "pw9", "legacy", "")

	for _, transactional := range []bool{false, true} {
		cmd := publishCommand()
		cmd.Transactional = transactional

		resp, err := newPublishUseCase(t, st).Execute(ctx, cmd)
		require.NoError(t, err)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, promotion.ResourceTypeLayout, resp.Results[0].ResourceType)
		assert.Equal(t, promotion.ResourceTypeWorkflow, resp.Results[1].ResourceType)

		if !transactional {
			assert.Equal(t, PublishSummary{Resources: 3, Successful: 3}, resp.Summary)
		} else {
			// Everything was promoted by the first run.
			assert.Equal(t, PublishSummary{Resources: 2, Skipped: 2}, resp.Summary)
		}
	}

	layout, err := st.FindLayout(ctx, prodEnvID, testOrg, "main")
	require.NoError(t, err)
	assert.Equal(t, "main", layout.Identifier)

	wf, err := st.FindWorkflow(ctx, prodEnvID, testOrg, "welcome")
	require.NoError(t, err)
	controls, err := st.ListControlValues(ctx, testOrg, []string{wf.ID})
	require.NoError(t, err)
	require.Len(t, controls, 1)
	assert.Equal(t, "main", controls[0].LayoutID())

	_, err = st.FindWorkflow(ctx, prodEnvID, testOrg, "legacy")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPublishEnvironmentDryRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newEnvStore()
	seedLayout(t, st, devEnvID, "dl1", "main")
	seedWorkflow(t, st, devEnvID, "dw1", "welcome", "main")
	seedWorkflow(t, st, devEnvID, "dw2", "digest", "")
	seedWorkflow(t, st, prodEnvID, "pw2", "digest", "main")
	seedWorkflow(t, st, prodEnvID, "pw3", "legacy", "")

	diff := newDiffUseCase(t, st)
	diffCmd := DiffCommand{User: testUser(), TargetEnvironmentID: prodEnvID}
	before, err := diff.Execute(ctx, diffCmd)
	require.NoError(t, err)
	require.True(t, before.Summary.HasChanges)

	cmd := publishCommand()
	cmd.Options.DryRun = true
	cmd.Transactional = true

	resp, err := newPublishUseCase(t, st).Execute(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, PublishSummary{Resources: 3, Skipped: 3}, resp.Summary)
	for _, result := range resp.Results {
		for _, skip := range result.Skipped {
			assert.Equal(t, promotion.SkipReasonDryRun, skip.Reason)
		}
	}

	_, err = st.FindLayout(ctx, prodEnvID, testOrg, "main")
	require.ErrorIs(t, err, store.ErrNotFound)

	after, err := diff.Execute(ctx, diffCmd)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPublishEnvironmentTransactionalRollback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := newEnvStore()
	seedLayout(t, inner, devEnvID, "dl1", "main")
	seedWorkflow(t, inner, devEnvID, "dw1", "a-welcome", "main")
	seedWorkflow(t, inner, devEnvID, "dw2", "b-broken", "")
	st := &failingStore{Store: inner, failIdentifier: "b-broken"}

	cmd := publishCommand()
	cmd.Transactional = true

	_, err := newPublishUseCase(t, st).Execute(ctx, cmd)
	require.ErrorIs(t, err, ErrPublishRolledBack)

	_, err = inner.FindLayout(ctx, prodEnvID, testOrg, "main")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = inner.FindWorkflow(ctx, prodEnvID, testOrg, "a-welcome")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPublishEnvironmentPartialFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := newEnvStore()
	seedLayout(t, inner, devEnvID, "dl1", "main")
	seedWorkflow(t, inner, devEnvID, "dw1", "a-welcome", "main")
	seedWorkflow(t, inner, devEnvID, "dw2", "b-broken", "")
	seedWorkflow(t, inner, devEnvID, "dw3", "c-never", "")
	st := &failingStore{Store: inner, failIdentifier: "b-broken"}

	resp, err := newPublishUseCase(t, st).Execute(ctx, publishCommand())
	require.NoError(t, err)
	assert.Equal(t, PublishSummary{Resources: 3, Successful: 2, Failed: 1}, resp.Summary)

	workflows := resp.Results[1]
	require.Len(t, workflows.Failed, 1)
	assert.Equal(t, "b-broken", workflows.Failed[0].ResourceID)
	assert.Contains(t, workflows.Failed[0].Error, errInjected.Error())

	_, err = inner.FindWorkflow(ctx, prodEnvID, testOrg, "a-welcome")
	require.NoError(t, err)
	_, err = inner.FindWorkflow(ctx, prodEnvID, testOrg, "c-never")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPublishEnvironmentSelectors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newEnvStore()
	seedLayout(t, st, devEnvID, "dl1", "main")
	seedWorkflow(t, st, devEnvID, "dw1", "welcome", "main")
	seedWorkflow(t, st, devEnvID, "dw2", "digest", "")

	cmd := publishCommand()
	cmd.Options.Resources = []promotion.ResourceSelector{
		{ResourceType: promotion.ResourceTypeWorkflow, ResourceID: "digest"},
	}

	resp, err := newPublishUseCase(t, st).Execute(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, PublishSummary{Resources: 1, Successful: 1}, resp.Summary)

	_, err = st.FindWorkflow(ctx, prodEnvID, testOrg, "digest")
	require.NoError(t, err)
	_, err = st.FindLayout(ctx, prodEnvID, testOrg, "main")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPublishEnvironmentValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*PublishCommand)
		wantErr error
	}{
		{
			name: "unsupported selector type",
			mutate: func(c *PublishCommand) {
				c.Options.Resources = []promotion.ResourceSelector{{ResourceType: "translation", ResourceID: "x"}}
			},
			wantErr: ErrInvalidOptions,
		},
		{
			name: "empty selector id",
			mutate: func(c *PublishCommand) {
				c.Options.Resources = []promotion.ResourceSelector{{ResourceType: promotion.ResourceTypeLayout}}
			},
			wantErr: ErrInvalidOptions,
		},
		{name: "malformed target", mutate: func(c *PublishCommand) { c.TargetEnvironmentID = "prod" }, wantErr: ErrInvalidEnvironmentID},
		{name: "foreign target", mutate: func(c *PublishCommand) { c.TargetEnvironmentID = foreignID }, wantErr: ErrOrganizationMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := publishCommand()
			tt.mutate(&cmd)
			_, err := newPublishUseCase(t, newEnvStore()).Execute(context.Background(), cmd)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAvailableResources(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newEnvStore()
	seedLayout(t, st, devEnvID, "dl1", "main")
	seedWorkflow(t, st, devEnvID, "dw1", "welcome", "")
	seedWorkflow(t, st, devEnvID, "dw2", "digest", "")

	uc := NewAvailableResources(st, NewStrategyFactory(st, CompareRules{}, nil))

	ids, err := uc.Execute(ctx, testOrg, devEnvID, promotion.ResourceTypeWorkflow)
	require.NoError(t, err)
	assert.Equal(t, []string{"digest", "welcome"}, ids)

	ids, err = uc.Execute(ctx, testOrg, devEnvID, promotion.ResourceTypeLayout)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, ids)

	_, err = uc.Execute(ctx, testOrg, devEnvID, promotion.ResourceTypeStep)
	require.ErrorIs(t, err, ErrInvalidOptions)

	_, err = uc.Execute(ctx, testOrg, "dev", promotion.ResourceTypeWorkflow)
	require.ErrorIs(t, err, ErrInvalidEnvironmentID)

	_, err = uc.Execute(ctx, testOrg, foreignID, promotion.ResourceTypeWorkflow)
	require.ErrorIs(t, err, ErrOrganizationMismatch)
}
