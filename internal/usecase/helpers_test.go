package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/store"
	"github.com/stacklok/envsync/internal/store/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	testOrg   = "org-1"
	otherOrg  = "org-2"
	devEnvID  = "6f1c6a4e-2a61-4c5e-9d4b-0d8f1d1a0a01"
	prodEnvID = "6f1c6a4e-2a61-4c5e-9d4b-0d8f1d1a0a02"
	foreignID = "6f1c6a4e-2a61-4c5e-9d4b-0d8f1d1a0a03"
	missingID = "6f1c6a4e-2a61-4c5e-9d4b-0d8f1d1a0a04"
)

var errInjected = errors.New("injected write failure")

func testUser() promotion.UserContext {
	return promotion.UserContext{UserID: "user-1", OrganizationID: testOrg, EnvironmentID: devEnvID}
}

func newEnvStore() *memory.Store {
	st := memory.New()
	st.AddEnvironment(domain.Environment{ID: devEnvID, OrganizationID: testOrg, Name: "Development", Type: domain.EnvironmentDevelopment})
	st.AddEnvironment(domain.Environment{ID: prodEnvID, OrganizationID: testOrg, Name: "Production", Type: domain.EnvironmentProduction})
	st.AddEnvironment(domain.Environment{ID: foreignID, OrganizationID: otherOrg, Name: "Production", Type: domain.EnvironmentProduction})
	return st
}

func seedLayout(t *testing.T, st *memory.Store, envID, id, identifier string) {
	t.Helper()
	require.NoError(t, st.CreateLayout(context.Background(), &domain.Layout{
		ID: id, EnvironmentID: envID, OrganizationID: testOrg, Identifier: identifier, Name: identifier,
		Channel: domain.StepTypeEmail, Origin: domain.OriginInternal,
	}))
}

func seedWorkflow(t *testing.T, st *memory.Store, envID, id, identifier, layoutID string) {
	t.Helper()
	stepID := id + "-email"
	require.NoError(t, st.CreateWorkflow(context.Background(), &domain.Workflow{
		ID: id, EnvironmentID: envID, OrganizationID: testOrg, Identifier: identifier, Name: identifier,
		Origin: domain.OriginInternal, Status: domain.WorkflowStatusActive,
		Steps: []domain.Step{{ID: stepID, StepID: "email", Name: "Email", Type: domain.StepTypeEmail}},
	}))
	if layoutID != "" {
		st.AddControlValues(domain.ControlValues{
			ID: stepID + "-cv", EnvironmentID: envID, OrganizationID: testOrg, WorkflowID: id, StepID: stepID,
			Values: map[string]any{domain.LayoutIDControl: layoutID},
		})
	}
}

// failingStore fails the creation of one workflow identifier and routes
// sessions back through itself so the failure also applies inside them
type failingStore struct {
	*memory.Store
	failIdentifier string
}

func (f *failingStore) CreateWorkflow(ctx context.Context, wf *domain.Workflow) error {
	if wf.Identifier == f.failIdentifier {
		return fmt.Errorf("workflow %s: %w", wf.Identifier, errInjected)
	}
	return f.Store.CreateWorkflow(ctx, wf)
}

func (f *failingStore) WithSession(ctx context.Context, fn func(ctx context.Context, session store.Session) error) error {
	return f.Store.WithSession(ctx, func(ctx context.Context, _ store.Session) error {
		return fn(ctx, f)
	})
}
