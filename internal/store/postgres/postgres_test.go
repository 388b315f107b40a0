package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/stacklok/envsync/database"
	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/store"
	"github.com/stacklok/envsync/internal/store/postgres"
)

const (
	testOrg = "org-1"
	devEnv  = "7b1e0c1a-0000-4000-8000-000000000001"
	prodEnv = "7b1e0c1a-0000-4000-8000-000000000002"
)

func setupStore(t *testing.T) (*postgres.Store, *tracetest.SpanRecorder) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	st, err := postgres.New(pool, postgres.WithTracer(tp.Tracer(postgres.TracerName)))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, st.CreateEnvironment(ctx, &domain.Environment{
		ID: devEnv, OrganizationID: testOrg, Name: "Development", Type: domain.EnvironmentDevelopment,
	}))
	require.NoError(t, st.CreateEnvironment(ctx, &domain.Environment{
		ID: prodEnv, OrganizationID: testOrg, Name: "Production", Type: domain.EnvironmentProduction,
	}))
	return st, recorder
}

func newWorkflow(id, envID, identifier string) *domain.Workflow {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Workflow{
		ID:             id,
		EnvironmentID:  envID,
		OrganizationID: testOrg,
		Identifier:     identifier,
		Name:           identifier,
		Tags:           []string{"onboarding"},
		PayloadSchema:  map[string]any{"type": "object"},
		Origin:         domain.OriginInternal,
		Status:         domain.WorkflowStatusActive,
		Steps:          []domain.Step{{ID: id + "-s1", StepID: "email", Name: "Email", Type: domain.StepTypeEmail}},
		CreatedAt:      now,
		UpdatedAt:      now,
		UpdatedBy:      &domain.UserRef{ID: "user-1"},
	}
}

func TestNewRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := postgres.New(nil)
	require.Error(t, err)
}

func TestEnvironments(t *testing.T) {
	t.Parallel()
	st, recorder := setupStore(t)
	ctx := context.Background()

	env, err := st.GetEnvironment(ctx, devEnv)
	require.NoError(t, err)
	assert.Equal(t, domain.EnvironmentDevelopment, env.Type)

	_, err = st.GetEnvironment(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	envs, err := st.ListEnvironments(ctx, testOrg)
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, "Development", envs[0].Name)

	err = st.CreateEnvironment(ctx, &domain.Environment{ID: devEnv, OrganizationID: testOrg, Name: "dup", Type: "development"})
	require.ErrorIs(t, err, store.ErrConflict)

	assert.NotEmpty(t, recorder.Ended())
	require.NoError(t, st.Ping(ctx))
}

func TestWorkflowLifecycle(t *testing.T) {
	t.Parallel()
	st, _ := setupStore(t)
	ctx := context.Background()

	wf := newWorkflow("w1", devEnv, "welcome")
	require.NoError(t, st.CreateWorkflow(ctx, wf))
	require.ErrorIs(t, st.CreateWorkflow(ctx, newWorkflow("w2", devEnv, "welcome")), store.ErrConflict)

	require.NoError(t, st.ReplaceControlValues(ctx, "w1", []domain.ControlValues{{
		ID: "cv1", EnvironmentID: devEnv, OrganizationID: testOrg, WorkflowID: "w1", StepID: "w1-s1",
		Values: map[string]any{"subject": "Hi", domain.LayoutIDControl: "main"}, UpdatedAt: wf.UpdatedAt,
	}}))
	require.NoError(t, st.ReplacePreferences(ctx, "w1", []domain.Preferences{{
		ID: "p1", EnvironmentID: devEnv, OrganizationID: testOrg, WorkflowID: "w1",
		Settings: map[string]any{"email": true}, UpdatedAt: wf.UpdatedAt,
	}}))

	found, err := st.FindWorkflow(ctx, devEnv, testOrg, "welcome")
	require.NoError(t, err)
	assert.Equal(t, wf.Steps, found.Steps)
	assert.Equal(t, wf.Tags, found.Tags)
	assert.Equal(t, wf.PayloadSchema, found.PayloadSchema)
	assert.True(t, wf.CreatedAt.Equal(found.CreatedAt))
	assert.Equal(t, "user-1", found.UpdatedBy.ID)

	byIDs, err := st.ListWorkflowsByIDs(ctx, devEnv, []string{"w1", "unknown"})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)

	controls, err := st.ListControlValues(ctx, testOrg, []string{"w1"})
	require.NoError(t, err)
	require.Len(t, controls, 1)
	assert.Equal(t, "main", controls[0].LayoutID())

	byLayout, err := st.ListControlValuesByLayout(ctx, devEnv, testOrg, "main")
	require.NoError(t, err)
	require.Len(t, byLayout, 1)

	prefs, err := st.ListPreferences(ctx, testOrg, []string{"w1"})
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	assert.Equal(t, true, prefs[0].Settings["email"])

	found.Name = "Welcome v2"
	require.NoError(t, st.UpdateWorkflow(ctx, found))
	workflows, err := st.ListWorkflows(ctx, devEnv, testOrg)
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, "Welcome v2", workflows[0].Name)

	require.ErrorIs(t, st.UpdateWorkflow(ctx, newWorkflow("nope", devEnv, "nope")), store.ErrNotFound)

	require.NoError(t, st.DeleteWorkflow(ctx, devEnv, "w1"))
	require.ErrorIs(t, st.DeleteWorkflow(ctx, devEnv, "w1"), store.ErrNotFound)
	controls, err = st.ListControlValues(ctx, testOrg, []string{"w1"})
	require.NoError(t, err)
	assert.Empty(t, controls)
}

func TestLayoutLifecycle(t *testing.T) {
	t.Parallel()
	st, _ := setupStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	layout := &domain.Layout{
		ID: "l1", EnvironmentID: prodEnv, OrganizationID: testOrg, Identifier: "main", Name: "Main",
		Channel: domain.StepTypeEmail, ControlValues: map[string]any{"body": "x"}, Origin: domain.OriginInternal,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, st.CreateLayout(ctx, layout))

	found, err := st.FindLayout(ctx, prodEnv, testOrg, "main")
	require.NoError(t, err)
	assert.Equal(t, layout.ControlValues, found.ControlValues)

	found.IsDeleted = true
	require.NoError(t, st.UpdateLayout(ctx, found))
	_, err = st.FindLayout(ctx, prodEnv, testOrg, "main")
	require.ErrorIs(t, err, store.ErrNotFound)

	// A soft-deleted layout does not block its identifier.
	replacement := *layout
	replacement.ID = "l2"
	require.NoError(t, st.CreateLayout(ctx, &replacement))

	layouts, err := st.ListLayouts(ctx, prodEnv, testOrg)
	require.NoError(t, err)
	assert.Len(t, layouts, 2)

	require.NoError(t, st.DeleteLayout(ctx, prodEnv, "l2"))
	require.ErrorIs(t, st.DeleteLayout(ctx, prodEnv, "l2"), store.ErrNotFound)
}

func TestWithSession(t *testing.T) {
	t.Parallel()
	st, _ := setupStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := st.WithSession(ctx, func(ctx context.Context, session store.Session) error {
		require.NoError(t, session.CreateWorkflow(ctx, newWorkflow("w1", prodEnv, "welcome")))
		_, err := session.FindWorkflow(ctx, prodEnv, testOrg, "welcome")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.FindWorkflow(ctx, prodEnv, testOrg, "welcome")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = st.WithSession(ctx, func(ctx context.Context, session store.Session) error {
		return session.CreateWorkflow(ctx, newWorkflow("w1", prodEnv, "welcome"))
	})
	require.NoError(t, err)

	_, err = st.FindWorkflow(ctx, prodEnv, testOrg, "welcome")
	require.NoError(t, err)
}
