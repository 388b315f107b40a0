// Package preload provides a request-scoped cache of the data needed to
// assemble full workflow views, so comparisons and dependency analysis do
// not issue one query per workflow.
package preload

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/store"
)

// StepView is a step together with its resolved control values
type StepView struct {
	domain.Step
	ControlValues map[string]any `json:"controlValues,omitempty"`
}

// LayoutID returns the layout referenced by the step's controls, if any
func (s *StepView) LayoutID() string {
	return domain.LayoutIDFromControls(s.ControlValues)
}

// WorkflowView is a fully assembled workflow
type WorkflowView struct {
	Workflow    domain.Workflow
	Steps       []StepView
	Preferences map[string]any
}

// LayoutIDs returns every distinct layout referenced by the workflow's steps, in step order
func (v *WorkflowView) LayoutIDs() []string {
	var ids []string
	seen := make(map[string]struct{})
	for i := range v.Steps {
		id := v.Steps[i].LayoutID()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

type viewKey struct {
	identifier string
	envID      string
}

// Container caches control values and preferences of a candidate workflow set
type Container struct {
	reader store.Reader

	mu          sync.RWMutex
	loaded      bool
	workflows   map[string][]domain.Workflow
	controls    map[string]map[string]map[string]any // workflow id -> step id -> values
	preferences map[string]map[string]any            // workflow id -> settings
	views       map[viewKey]*WorkflowView
}

// New creates an empty container reading from the given store
func New(reader store.Reader) *Container {
	return &Container{
		reader:      reader,
		workflows:   make(map[string][]domain.Workflow),
		controls:    make(map[string]map[string]map[string]any),
		preferences: make(map[string]map[string]any),
		views:       make(map[viewKey]*WorkflowView),
	}
}

// Load lists the syncable workflows of every environment and fetches the
// control values and preferences of all of them with one query each. Only
// the first call does any work.
func (c *Container) Load(ctx context.Context, orgID string, envIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	var ids []string
	for _, envID := range envIDs {
		if _, done := c.workflows[envID]; done {
			continue
		}
		all, err := c.reader.ListWorkflows(ctx, envID, orgID)
		if err != nil {
			return fmt.Errorf("failed to list workflows of environment %s: %w", envID, err)
		}
		syncable := make([]domain.Workflow, 0, len(all))
		for _, wf := range all {
			if wf.IsSyncable() {
				syncable = append(syncable, wf)
				ids = append(ids, wf.ID)
			}
		}
		c.workflows[envID] = syncable
	}

	if err := c.index(ctx, orgID, ids); err != nil {
		return err
	}

	for envID, workflows := range c.workflows {
		for _, wf := range workflows {
			c.views[viewKey{identifier: wf.Identifier, envID: envID}] = c.assemble(wf)
		}
	}

	c.loaded = true
	logr.FromContextOrDiscard(ctx).V(1).Info("Preloaded workflow data",
		"workflows", len(ids), "environments", len(envIDs))
	return nil
}

// Loaded reports whether Load has completed
func (c *Container) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Workflows returns the preloaded syncable workflows of an environment
func (c *Container) Workflows(envID string) ([]domain.Workflow, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	workflows, ok := c.workflows[envID]
	return workflows, ok
}

// View returns the assembled view of a workflow by identifier and environment
func (c *Container) View(identifier, envID string) (*WorkflowView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	view, ok := c.views[viewKey{identifier: identifier, envID: envID}]
	return view, ok
}

// ViewOf assembles a view for a workflow from the cached controls and
// preferences. Workflows outside the preloaded set get empty controls.
func (c *Container) ViewOf(wf domain.Workflow) *WorkflowView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.assemble(wf)
}

// assemble builds a view. Caller must hold c.mu.
func (c *Container) assemble(wf domain.Workflow) *WorkflowView {
	view := &WorkflowView{
		Workflow:    wf,
		Steps:       make([]StepView, len(wf.Steps)),
		Preferences: c.preferences[wf.ID],
	}
	byStep := c.controls[wf.ID]
	for i, step := range wf.Steps {
		view.Steps[i] = StepView{Step: step, ControlValues: byStep[step.ID]}
	}
	return view
}

// index fetches the control values and preferences of the given workflows
// with one query each. Caller must hold c.mu or own c exclusively.
func (c *Container) index(ctx context.Context, orgID string, workflowIDs []string) error {
	if len(workflowIDs) == 0 {
		return nil
	}

	controls, err := c.reader.ListControlValues(ctx, orgID, workflowIDs)
	if err != nil {
		return fmt.Errorf("failed to list control values: %w", err)
	}
	for _, cv := range controls {
		byStep, ok := c.controls[cv.WorkflowID]
		if !ok {
			byStep = make(map[string]map[string]any)
			c.controls[cv.WorkflowID] = byStep
		}
		byStep[cv.StepID] = cv.Values
	}

	prefs, err := c.reader.ListPreferences(ctx, orgID, workflowIDs)
	if err != nil {
		return fmt.Errorf("failed to list preferences: %w", err)
	}
	for _, p := range prefs {
		c.preferences[p.WorkflowID] = p.Settings
	}
	return nil
}

// Assemble builds views for workflows outside any container, fetching their
// control values and preferences with one query each
func Assemble(ctx context.Context, reader store.Reader, orgID string, workflows []domain.Workflow) ([]*WorkflowView, error) {
	scratch := New(reader)
	ids := make([]string, 0, len(workflows))
	for _, wf := range workflows {
		ids = append(ids, wf.ID)
	}
	if err := scratch.index(ctx, orgID, ids); err != nil {
		return nil, err
	}

	views := make([]*WorkflowView, 0, len(workflows))
	for _, wf := range workflows {
		views = append(views, scratch.assemble(wf))
	}
	return views, nil
}
