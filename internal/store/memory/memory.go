// Package memory provides an in-memory implementation of store.Store for
// tests. Sessions are serialized and roll back by restoring a snapshot.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/store"
)

// state is the full contents of the store. It is copied wholesale to
// implement session rollback.
type state struct {
	environments map[string]domain.Environment
	workflows    map[string]domain.Workflow
	controls     map[string]domain.ControlValues
	preferences  map[string]domain.Preferences
	layouts      map[string]domain.Layout
}

func newState() *state {
	return &state{
		environments: make(map[string]domain.Environment),
		workflows:    make(map[string]domain.Workflow),
		controls:     make(map[string]domain.ControlValues),
		preferences:  make(map[string]domain.Preferences),
		layouts:      make(map[string]domain.Layout),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.environments {
		c.environments[k] = v
	}
	for k, v := range s.workflows {
		c.workflows[k] = cloneWorkflow(v)
	}
	for k, v := range s.controls {
		c.controls[k] = cloneControls(v)
	}
	for k, v := range s.preferences {
		c.preferences[k] = clonePreferences(v)
	}
	for k, v := range s.layouts {
		c.layouts[k] = cloneLayout(v)
	}
	return c
}

// Store is an in-memory store.Store
type Store struct {
	mu    sync.RWMutex // Protects data
	txMu  sync.Mutex   // Serializes sessions
	data  *state
	calls map[string]int
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		data:  newState(),
		calls: make(map[string]int),
	}
}

// Calls returns how many times the named method was invoked. Tests use it to
// assert query counts.
func (s *Store) Calls(method string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[method]
}

// AddEnvironment registers an environment
func (s *Store) AddEnvironment(env domain.Environment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.environments[env.ID] = env
}

// AddControlValues stores a control value record as-is
func (s *Store) AddControlValues(values domain.ControlValues) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.controls[values.ID] = cloneControls(values)
}

// AddPreferences stores a preference record as-is
func (s *Store) AddPreferences(prefs domain.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.preferences[prefs.ID] = clonePreferences(prefs)
}

func (s *Store) track(method string) {
	s.calls[method]++
}

// Ping always succeeds
func (*Store) Ping(_ context.Context) error {
	return nil
}

// WithSession runs fn against the store and restores the previous contents
// when fn fails
func (s *Store) WithSession(ctx context.Context, fn func(ctx context.Context, session store.Session) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// GetEnvironment returns an environment by id
func (s *Store) GetEnvironment(_ context.Context, id string) (*domain.Environment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("GetEnvironment")

	env, ok := s.data.environments[id]
	if !ok {
		return nil, fmt.Errorf("environment %s: %w", id, store.ErrNotFound)
	}
	return &env, nil
}

// ListEnvironments returns the environments of an organization ordered by name
func (s *Store) ListEnvironments(_ context.Context, orgID string) ([]domain.Environment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("ListEnvironments")

	var out []domain.Environment
	for _, env := range s.data.environments {
		if env.OrganizationID == orgID {
			out = append(out, env)
		}
	}
	slices.SortFunc(out, func(a, b domain.Environment) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// ListWorkflows returns the workflows of an environment ordered by identifier
func (s *Store) ListWorkflows(_ context.Context, envID, orgID string) ([]domain.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("ListWorkflows")

	var out []domain.Workflow
	for _, wf := range s.data.workflows {
		if wf.EnvironmentID == envID && wf.OrganizationID == orgID {
			out = append(out, cloneWorkflow(wf))
		}
	}
	slices.SortFunc(out, func(a, b domain.Workflow) int { return strings.Compare(a.Identifier, b.Identifier) })
	return out, nil
}

// ListWorkflowsByIDs returns the workflows with the given storage ids
func (s *Store) ListWorkflowsByIDs(_ context.Context, envID string, ids []string) ([]domain.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("ListWorkflowsByIDs")

	var out []domain.Workflow
	for _, id := range ids {
		wf, ok := s.data.workflows[id]
		if ok && wf.EnvironmentID == envID {
			out = append(out, cloneWorkflow(wf))
		}
	}
	slices.SortFunc(out, func(a, b domain.Workflow) int { return strings.Compare(a.Identifier, b.Identifier) })
	return out, nil
}

// FindWorkflow returns the workflow with the given identifier
func (s *Store) FindWorkflow(_ context.Context, envID, orgID, identifier string) (*domain.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("FindWorkflow")

	for _, wf := range s.data.workflows {
		if wf.EnvironmentID == envID && wf.OrganizationID == orgID && wf.Identifier == identifier {
			c := cloneWorkflow(wf)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("workflow %s: %w", identifier, store.ErrNotFound)
}

// ListControlValues returns the control values of the given workflows
func (s *Store) ListControlValues(_ context.Context, orgID string, workflowIDs []string) ([]domain.ControlValues, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("ListControlValues")

	var out []domain.ControlValues
	for _, cv := range s.data.controls {
		if cv.OrganizationID == orgID && slices.Contains(workflowIDs, cv.WorkflowID) {
			out = append(out, cloneControls(cv))
		}
	}
	slices.SortFunc(out, func(a, b domain.ControlValues) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// ListControlValuesByLayout returns the control values of an environment that reference a layout
func (s *Store) ListControlValuesByLayout(
	_ context.Context, envID, orgID, layoutIdentifier string,
) ([]domain.ControlValues, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("ListControlValuesByLayout")

	var out []domain.ControlValues
	for _, cv := range s.data.controls {
		if cv.EnvironmentID == envID && cv.OrganizationID == orgID && cv.LayoutID() == layoutIdentifier {
			out = append(out, cloneControls(cv))
		}
	}
	slices.SortFunc(out, func(a, b domain.ControlValues) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// ListPreferences returns the preferences of the given workflows
func (s *Store) ListPreferences(_ context.Context, orgID string, workflowIDs []string) ([]domain.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("ListPreferences")

	var out []domain.Preferences
	for _, p := range s.data.preferences {
		if p.OrganizationID == orgID && slices.Contains(workflowIDs, p.WorkflowID) {
			out = append(out, clonePreferences(p))
		}
	}
	slices.SortFunc(out, func(a, b domain.Preferences) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// ListLayouts returns the layouts of an environment ordered by identifier
func (s *Store) ListLayouts(_ context.Context, envID, orgID string) ([]domain.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("ListLayouts")

	var out []domain.Layout
	for _, l := range s.data.layouts {
		if l.EnvironmentID == envID && l.OrganizationID == orgID {
			out = append(out, cloneLayout(l))
		}
	}
	slices.SortFunc(out, func(a, b domain.Layout) int { return strings.Compare(a.Identifier, b.Identifier) })
	return out, nil
}

// FindLayout returns the layout with the given identifier
func (s *Store) FindLayout(_ context.Context, envID, orgID, identifier string) (*domain.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("FindLayout")

	for _, l := range s.data.layouts {
		if l.EnvironmentID == envID && l.OrganizationID == orgID && l.Identifier == identifier && !l.IsDeleted {
			c := cloneLayout(l)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("layout %s: %w", identifier, store.ErrNotFound)
}

// CreateWorkflow stores a new workflow
func (s *Store) CreateWorkflow(_ context.Context, workflow *domain.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("CreateWorkflow")

	if _, exists := s.data.workflows[workflow.ID]; exists {
		return fmt.Errorf("workflow %s: %w", workflow.ID, store.ErrConflict)
	}
	for _, wf := range s.data.workflows {
		if wf.EnvironmentID == workflow.EnvironmentID && wf.Identifier == workflow.Identifier {
			return fmt.Errorf("workflow %s: %w", workflow.Identifier, store.ErrConflict)
		}
	}
	s.data.workflows[workflow.ID] = cloneWorkflow(*workflow)
	return nil
}

// UpdateWorkflow replaces an existing workflow
func (s *Store) UpdateWorkflow(_ context.Context, workflow *domain.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("UpdateWorkflow")

	if _, exists := s.data.workflows[workflow.ID]; !exists {
		return fmt.Errorf("workflow %s: %w", workflow.ID, store.ErrNotFound)
	}
	s.data.workflows[workflow.ID] = cloneWorkflow(*workflow)
	return nil
}

// DeleteWorkflow removes a workflow with its control values and preferences
func (s *Store) DeleteWorkflow(_ context.Context, envID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("DeleteWorkflow")

	wf, exists := s.data.workflows[id]
	if !exists || wf.EnvironmentID != envID {
		return fmt.Errorf("workflow %s: %w", id, store.ErrNotFound)
	}
	delete(s.data.workflows, id)
	for key, cv := range s.data.controls {
		if cv.WorkflowID == id {
			delete(s.data.controls, key)
		}
	}
	for key, p := range s.data.preferences {
		if p.WorkflowID == id {
			delete(s.data.preferences, key)
		}
	}
	return nil
}

// ReplaceControlValues replaces the control values of a workflow
func (s *Store) ReplaceControlValues(_ context.Context, workflowID string, values []domain.ControlValues) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("ReplaceControlValues")

	for key, cv := range s.data.controls {
		if cv.WorkflowID == workflowID {
			delete(s.data.controls, key)
		}
	}
	for _, cv := range values {
		s.data.controls[cv.ID] = cloneControls(cv)
	}
	return nil
}

// ReplacePreferences replaces the preferences of a workflow
func (s *Store) ReplacePreferences(_ context.Context, workflowID string, preferences []domain.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("ReplacePreferences")

	for key, p := range s.data.preferences {
		if p.WorkflowID == workflowID {
			delete(s.data.preferences, key)
		}
	}
	for _, p := range preferences {
		s.data.preferences[p.ID] = clonePreferences(p)
	}
	return nil
}

// CreateLayout stores a new layout
func (s *Store) CreateLayout(_ context.Context, layout *domain.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("CreateLayout")

	if _, exists := s.data.layouts[layout.ID]; exists {
		return fmt.Errorf("layout %s: %w", layout.ID, store.ErrConflict)
	}
	for _, l := range s.data.layouts {
		if l.EnvironmentID == layout.EnvironmentID && l.Identifier == layout.Identifier && !l.IsDeleted {
			return fmt.Errorf("layout %s: %w", layout.Identifier, store.ErrConflict)
		}
	}
	s.data.layouts[layout.ID] = cloneLayout(*layout)
	return nil
}

// UpdateLayout replaces an existing layout
func (s *Store) UpdateLayout(_ context.Context, layout *domain.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("UpdateLayout")

	if _, exists := s.data.layouts[layout.ID]; !exists {
		return fmt.Errorf("layout %s: %w", layout.ID, store.ErrNotFound)
	}
	s.data.layouts[layout.ID] = cloneLayout(*layout)
	return nil
}

// DeleteLayout removes a layout
func (s *Store) DeleteLayout(_ context.Context, envID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("DeleteLayout")

	l, exists := s.data.layouts[id]
	if !exists || l.EnvironmentID != envID {
		return fmt.Errorf("layout %s: %w", id, store.ErrNotFound)
	}
	delete(s.data.layouts, id)
	return nil
}
