package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/store"
)

const testOrg = "org-1"

func workflow(id, envID, identifier string) *domain.Workflow {
	return &domain.Workflow{
		ID: id, EnvironmentID: envID, OrganizationID: testOrg, Identifier: identifier,
		Tags:  []string{"a"},
		Steps: []domain.Step{{ID: id + "-s", StepID: "email"}},
	}
}

func TestWorkflows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateWorkflow(ctx, workflow("w2", "dev", "zeta")))
	require.NoError(t, s.CreateWorkflow(ctx, workflow("w1", "dev", "alpha")))
	require.NoError(t, s.CreateWorkflow(ctx, workflow("w3", "prod", "alpha")))
	require.ErrorIs(t, s.CreateWorkflow(ctx, workflow("w4", "dev", "alpha")), store.ErrConflict)
	require.ErrorIs(t, s.CreateWorkflow(ctx, workflow("w1", "prod", "other")), store.ErrConflict)

	list, err := s.ListWorkflows(ctx, "dev", testOrg)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Identifier)

	// Returned values are copies.
	list[0].Tags[0] = "mutated"
	list[0].Steps[0].StepID = "mutated"
	again, err := s.FindWorkflow(ctx, "dev", testOrg, "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Tags)
	assert.Equal(t, "email", again.Steps[0].StepID)

	byIDs, err := s.ListWorkflowsByIDs(ctx, "dev", []string{"w2", "w3"})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Equal(t, "w2", byIDs[0].ID)

	again.Name = "Alpha"
	require.NoError(t, s.UpdateWorkflow(ctx, again))
	require.ErrorIs(t, s.UpdateWorkflow(ctx, workflow("nope", "dev", "nope")), store.ErrNotFound)

	_, err = s.FindWorkflow(ctx, "dev", testOrg, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.DeleteWorkflow(ctx, "prod", "w1"), store.ErrNotFound)
	require.NoError(t, s.DeleteWorkflow(ctx, "dev", "w1"))
	assert.Equal(t, 2, s.Calls("DeleteWorkflow"))
}

func TestControlValuesAndPreferences(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateWorkflow(ctx, workflow("w1", "dev", "alpha")))
	s.AddControlValues(domain.ControlValues{
		ID: "old", EnvironmentID: "dev", OrganizationID: testOrg, WorkflowID: "w1", StepID: "w1-s",
	})
	require.NoError(t, s.ReplaceControlValues(ctx, "w1", []domain.ControlValues{{
		ID: "new", EnvironmentID: "dev", OrganizationID: testOrg, WorkflowID: "w1", StepID: "w1-s",
		Values: map[string]any{domain.LayoutIDControl: "main", "nested": map[string]any{"k": "v"}},
	}}))
	require.NoError(t, s.ReplacePreferences(ctx, "w1", []domain.Preferences{{
		ID: "p", OrganizationID: testOrg, WorkflowID: "w1", Settings: map[string]any{"email": true},
	}}))

	controls, err := s.ListControlValues(ctx, testOrg, []string{"w1"})
	require.NoError(t, err)
	require.Len(t, controls, 1)
	assert.Equal(t, "new", controls[0].ID)

	controls[0].Values["nested"].(map[string]any)["k"] = "mutated"
	byLayout, err := s.ListControlValuesByLayout(ctx, "dev", testOrg, "main")
	require.NoError(t, err)
	require.Len(t, byLayout, 1)
	assert.Equal(t, "v", byLayout[0].Values["nested"].(map[string]any)["k"])

	prefs, err := s.ListPreferences(ctx, testOrg, []string{"w1"})
	require.NoError(t, err)
	require.Len(t, prefs, 1)

	require.NoError(t, s.DeleteWorkflow(ctx, "dev", "w1"))
	controls, err = s.ListControlValues(ctx, testOrg, []string{"w1"})
	require.NoError(t, err)
	assert.Empty(t, controls)
	prefs, err = s.ListPreferences(ctx, testOrg, []string{"w1"})
	require.NoError(t, err)
	assert.Empty(t, prefs)
}

func TestLayouts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateLayout(ctx, &domain.Layout{ID: "l1", EnvironmentID: "dev", OrganizationID: testOrg, Identifier: "main", IsDeleted: true}))
	require.NoError(t, s.CreateLayout(ctx, &domain.Layout{ID: "l2", EnvironmentID: "dev", OrganizationID: testOrg, Identifier: "main"}))
	require.ErrorIs(t, s.CreateLayout(ctx, &domain.Layout{ID: "l3", EnvironmentID: "dev", OrganizationID: testOrg, Identifier: "main"}), store.ErrConflict)

	found, err := s.FindLayout(ctx, "dev", testOrg, "main")
	require.NoError(t, err)
	assert.Equal(t, "l2", found.ID)

	layouts, err := s.ListLayouts(ctx, "dev", testOrg)
	require.NoError(t, err)
	assert.Len(t, layouts, 2)

	found.Name = "Main"
	require.NoError(t, s.UpdateLayout(ctx, found))
	require.ErrorIs(t, s.UpdateLayout(ctx, &domain.Layout{ID: "nope"}), store.ErrNotFound)

	require.NoError(t, s.DeleteLayout(ctx, "dev", "l2"))
	_, err = s.FindLayout(ctx, "dev", testOrg, "main")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnvironments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()
	s.AddEnvironment(domain.Environment{ID: "b", OrganizationID: testOrg, Name: "Production"})
	s.AddEnvironment(domain.Environment{ID: "a", OrganizationID: testOrg, Name: "Development"})
	s.AddEnvironment(domain.Environment{ID: "c", OrganizationID: "other", Name: "Other"})

	envs, err := s.ListEnvironments(ctx, testOrg)
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, "Development", envs[0].Name)

	_, err = s.GetEnvironment(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, s.Ping(ctx))
}

func TestWithSessionRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateWorkflow(ctx, workflow("w1", "dev", "alpha")))

	boom := errors.New("boom")
	err := s.WithSession(ctx, func(ctx context.Context, session store.Session) error {
		require.NoError(t, session.DeleteWorkflow(ctx, "dev", "w1"))
		require.NoError(t, session.CreateWorkflow(ctx, workflow("w2", "dev", "beta")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.FindWorkflow(ctx, "dev", testOrg, "alpha")
	require.NoError(t, err)
	_, err = s.FindWorkflow(ctx, "dev", testOrg, "beta")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithSession(ctx, func(ctx context.Context, session store.Session) error {
		return session.CreateWorkflow(ctx, workflow("w2", "dev", "beta"))
	}))
	_, err = s.FindWorkflow(ctx, "dev", testOrg, "beta")
	require.NoError(t, err)
}
