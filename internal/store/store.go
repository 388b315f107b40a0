// Package store defines the persistence contracts the promotion engine reads
// from and writes to. Implementations live in the postgres and memory
// subpackages.
package store

import (
	"context"
	"errors"

	"github.com/stacklok/envsync/internal/domain"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a record with the same identifier already exists
	ErrConflict = errors.New("conflict")
)

//go:generate mockgen -destination=mocks/mock_reader.go -package=mocks github.com/stacklok/envsync/internal/store Reader

// Reader is the read side of the store
type Reader interface {
	// GetEnvironment returns an environment by id
	GetEnvironment(ctx context.Context, id string) (*domain.Environment, error)
	// ListEnvironments returns all environments of an organization
	ListEnvironments(ctx context.Context, orgID string) ([]domain.Environment, error)

	// ListWorkflows returns all workflows of an environment, ordered by identifier
	ListWorkflows(ctx context.Context, envID, orgID string) ([]domain.Workflow, error)
	// ListWorkflowsByIDs returns the workflows with the given storage ids
	ListWorkflowsByIDs(ctx context.Context, envID string, ids []string) ([]domain.Workflow, error)
	// FindWorkflow returns the workflow with the given identifier
	FindWorkflow(ctx context.Context, envID, orgID, identifier string) (*domain.Workflow, error)

	// ListControlValues returns the control values of all steps of the given workflows
	ListControlValues(ctx context.Context, orgID string, workflowIDs []string) ([]domain.ControlValues, error)
	// ListControlValuesByLayout returns the control values of an environment that reference a layout
	ListControlValuesByLayout(ctx context.Context, envID, orgID, layoutIdentifier string) ([]domain.ControlValues, error)
	// ListPreferences returns the preferences of the given workflows
	ListPreferences(ctx context.Context, orgID string, workflowIDs []string) ([]domain.Preferences, error)

	// ListLayouts returns all layouts of an environment, ordered by identifier
	ListLayouts(ctx context.Context, envID, orgID string) ([]domain.Layout, error)
	// FindLayout returns the layout with the given identifier
	FindLayout(ctx context.Context, envID, orgID, identifier string) (*domain.Layout, error)
}

// Writer is the write side of the store
type Writer interface {
	CreateWorkflow(ctx context.Context, workflow *domain.Workflow) error
	UpdateWorkflow(ctx context.Context, workflow *domain.Workflow) error
	// DeleteWorkflow removes a workflow together with its control values and preferences
	DeleteWorkflow(ctx context.Context, envID, id string) error
	// ReplaceControlValues replaces every control value record of a workflow
	ReplaceControlValues(ctx context.Context, workflowID string, values []domain.ControlValues) error
	// ReplacePreferences replaces every preference record of a workflow
	ReplacePreferences(ctx context.Context, workflowID string, preferences []domain.Preferences) error

	CreateLayout(ctx context.Context, layout *domain.Layout) error
	UpdateLayout(ctx context.Context, layout *domain.Layout) error
	DeleteLayout(ctx context.Context, envID, id string) error
}

// Session is a unit of work. Writes made through a session become visible
// atomically when the owning Store.WithSession call returns nil.
type Session interface {
	Reader
	Writer
}

// Store is a Session bound to the backing storage plus lifecycle helpers
type Store interface {
	Session

	// WithSession runs fn inside a transaction. The transaction is rolled back
	// when fn returns an error.
	WithSession(ctx context.Context, fn func(ctx context.Context, session Session) error) error

	// Ping verifies the backing storage is reachable
	Ping(ctx context.Context) error
}
