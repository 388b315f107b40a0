package helpers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/store/postgres"
)

// Organization is a seeded organization with a development and a production environment
type Organization struct {
	ID            string
	DevelopmentID string
	ProductionID  string
}

// Caller returns a caller of the organization
func (o *Organization) Caller() Caller {
	return Caller{OrganizationID: o.ID, UserID: "user-" + o.ID[:8]}
}

// SeedOrganization creates an organization with fresh ids so specs do not share rows
func SeedOrganization(ctx context.Context, st *postgres.Store) (*Organization, error) {
	org := &Organization{
		ID:            uuid.NewString(),
		DevelopmentID: uuid.NewString(),
		ProductionID:  uuid.NewString(),
	}
	for _, env := range []domain.Environment{
		{ID: org.DevelopmentID, OrganizationID: org.ID, Name: "Development", Type: domain.EnvironmentDevelopment},
		{ID: org.ProductionID, OrganizationID: org.ID, Name: "Production", Type: domain.EnvironmentProduction},
	} {
		if err := st.CreateEnvironment(ctx, &env); err != nil {
			return nil, err
		}
	}
	return org, nil
}

// WorkflowBuilder provides a fluent interface for seeding a workflow
type WorkflowBuilder struct {
	workflow domain.Workflow
	controls map[string]map[string]any
}

// NewWorkflowBuilder starts an internal, active workflow
func NewWorkflowBuilder(orgID, envID, identifier string) *WorkflowBuilder {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &WorkflowBuilder{
		workflow: domain.Workflow{
			ID:             uuid.NewString(),
			EnvironmentID:  envID,
			OrganizationID: orgID,
			Identifier:     identifier,
			Name:           identifier,
			Active:         true,
			Origin:         domain.OriginInternal,
			Status:         domain.WorkflowStatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		controls: make(map[string]map[string]any),
	}
}

// WithName sets the workflow name
func (b *WorkflowBuilder) WithName(name string) *WorkflowBuilder {
	b.workflow.Name = name
	return b
}

// WithEmailStep appends an email step, optionally referencing a layout
func (b *WorkflowBuilder) WithEmailStep(stepID, layoutID string) *WorkflowBuilder {
	id := uuid.NewString()
	b.workflow.Steps = append(b.workflow.Steps, domain.Step{
		ID: id, StepID: stepID, Name: stepID, Type: domain.StepTypeEmail,
	})
	values := map[string]any{"subject": "Hello"}
	if layoutID != "" {
		values[domain.LayoutIDControl] = layoutID
	}
	b.controls[id] = values
	return b
}

// Create stores the workflow and its control values
func (b *WorkflowBuilder) Create(ctx context.Context, st *postgres.Store) (*domain.Workflow, error) {
	wf := b.workflow
	if err := st.CreateWorkflow(ctx, &wf); err != nil {
		return nil, err
	}
	var controls []domain.ControlValues
	for _, step := range wf.Steps {
		controls = append(controls, domain.ControlValues{
			ID:             uuid.NewString(),
			EnvironmentID:  wf.EnvironmentID,
			OrganizationID: wf.OrganizationID,
			WorkflowID:     wf.ID,
			StepID:         step.ID,
			Values:         b.controls[step.ID],
			UpdatedAt:      wf.UpdatedAt,
		})
	}
	if err := st.ReplaceControlValues(ctx, wf.ID, controls); err != nil {
		return nil, err
	}
	return &wf, nil
}

// CreateLayout stores an internal email layout
func CreateLayout(ctx context.Context, st *postgres.Store, orgID, envID, identifier, name string) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return st.CreateLayout(ctx, &domain.Layout{
		ID:             uuid.NewString(),
		EnvironmentID:  envID,
		OrganizationID: orgID,
		Identifier:     identifier,
		Name:           name,
		Channel:        domain.StepTypeEmail,
		ControlValues:  map[string]any{"body": "<main>{{content}}</main>"},
		Origin:         domain.OriginInternal,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}
