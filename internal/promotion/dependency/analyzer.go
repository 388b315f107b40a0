// Package dependency cross-links workflow and layout diff results. It finds
// the layouts a workflow needs in the target environment and the target
// workflows that still use a layout about to be deleted.
//
// Dependencies are advisory: callers decide whether a blocking dependency
// prevents a publish.
package dependency

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/promotion/preload"
	"github.com/stacklok/envsync/internal/store"
)

// Key identifies the DiffResult a dependency list belongs to
type Key struct {
	ResourceType promotion.ResourceType
	ResourceID   string
}

// KeyOf returns the key of a diff result
func KeyOf(result *promotion.DiffResult) Key {
	return Key{ResourceType: result.ResourceType, ResourceID: result.ResourceID()}
}

// Analyzer computes dependencies between diff results
type Analyzer struct {
	reader store.Reader
}

// NewAnalyzer creates an analyzer reading the target environment from reader
func NewAnalyzer(reader store.Reader) *Analyzer {
	return &Analyzer{reader: reader}
}

// analysis holds the state of one Analyze call
type analysis struct {
	reader      store.Reader
	targetEnvID string
	orgID       string

	layoutResults map[string]*promotion.DiffResult

	targetLayouts map[string]domain.Layout
	targetErr     error
	targetLoaded  bool
}

// Analyze returns the dependencies of every result that has any. Failures
// are isolated per resource: they are logged and leave that resource
// without dependencies.
func (a *Analyzer) Analyze(
	ctx context.Context,
	results []promotion.DiffResult,
	sourceEnvID, targetEnvID, orgID string,
	container *preload.Container,
) map[Key][]promotion.ResourceDependency {
	logger := logr.FromContextOrDiscard(ctx)

	an := &analysis{
		reader:        a.reader,
		targetEnvID:   targetEnvID,
		orgID:         orgID,
		layoutResults: make(map[string]*promotion.DiffResult),
	}
	for i := range results {
		if results[i].ResourceType == promotion.ResourceTypeLayout {
			an.layoutResults[results[i].ResourceID()] = &results[i]
		}
	}

	deps := make(map[Key][]promotion.ResourceDependency)

	for i := range results {
		result := &results[i]
		if result.ResourceType != promotion.ResourceTypeWorkflow || result.SourceResource == nil {
			continue
		}
		found, err := an.workflowDependencies(ctx, result, sourceEnvID, container)
		if err != nil {
			logger.Error(err, "Failed to analyze workflow dependencies", "workflowId", result.ResourceID())
			continue
		}
		if len(found) > 0 {
			deps[KeyOf(result)] = found
		}
	}

	for i := range results {
		result := &results[i]
		if result.ResourceType != promotion.ResourceTypeLayout || !result.IsDeletion() {
			continue
		}
		found, err := an.layoutDependents(ctx, result.ResourceID())
		if err != nil {
			logger.Error(err, "Failed to analyze layout dependents", "layoutId", result.ResourceID())
			continue
		}
		if len(found) > 0 {
			deps[KeyOf(result)] = found
		}
	}

	return deps
}

// Attach copies the analyzed dependencies onto their diff results
func Attach(results []promotion.DiffResult, deps map[Key][]promotion.ResourceDependency) {
	for i := range results {
		if found, ok := deps[KeyOf(&results[i])]; ok {
			results[i].Dependencies = found
		}
	}
}

// workflowDependencies classifies every layout the workflow references
func (an *analysis) workflowDependencies(
	ctx context.Context, result *promotion.DiffResult, sourceEnvID string, container *preload.Container,
) ([]promotion.ResourceDependency, error) {
	var deps []promotion.ResourceDependency
	for _, layoutID := range candidateLayouts(result, sourceEnvID, container) {
		layoutResult, inDiff := an.layoutResults[layoutID]
		if inDiff && layoutResult.IsDeletion() {
			continue
		}

		targetLayouts, err := an.loadTargetLayouts(ctx)
		if err != nil {
			return nil, err
		}
		existing, existsInTarget := targetLayouts[layoutID]

		dep := promotion.ResourceDependency{
			ResourceType: promotion.ResourceTypeLayout,
			ResourceID:   layoutID,
			ResourceName: layoutID,
			IsBlocking:   !existsInTarget,
			Reason:       promotion.ReasonLayoutRequiredForWorkflow,
		}
		if existsInTarget {
			dep.Reason = promotion.ReasonLayoutExistsInTarget
			dep.ResourceName = existing.Name
		}
		if inDiff {
			dep.ResourceName = layoutResult.ResourceName()
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// candidateLayouts collects the layouts referenced by the new values of email
// step diffs and by the preloaded source view, in that order, deduplicated.
// Previous values are ignored: the workflow no longer depends on them.
func candidateLayouts(result *promotion.DiffResult, sourceEnvID string, container *preload.Container) []string {
	var ids []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, change := range result.Changes {
		if change.ResourceType != promotion.ResourceTypeStep || change.StepType != domain.StepTypeEmail {
			continue
		}
		if change.Diffs == nil {
			continue
		}
		add(layoutIDOf(change.Diffs.New))
	}

	if container != nil {
		if view, ok := container.View(result.ResourceID(), sourceEnvID); ok {
			for _, id := range view.LayoutIDs() {
				add(id)
			}
		}
	}
	return ids
}

// layoutIDOf reads controlValues.layoutId from a normalized step
func layoutIDOf(value any) string {
	step, ok := value.(map[string]any)
	if !ok {
		return ""
	}
	controls, _ := step["controlValues"].(map[string]any)
	return domain.LayoutIDFromControls(controls)
}

func (an *analysis) loadTargetLayouts(ctx context.Context) (map[string]domain.Layout, error) {
	if an.targetLoaded {
		return an.targetLayouts, an.targetErr
	}
	an.targetLoaded = true

	layouts, err := an.reader.ListLayouts(ctx, an.targetEnvID, an.orgID)
	if err != nil {
		an.targetErr = fmt.Errorf("failed to list target layouts: %w", err)
		return nil, an.targetErr
	}
	an.targetLayouts = make(map[string]domain.Layout, len(layouts))
	for _, l := range layouts {
		if !l.IsDeleted {
			an.targetLayouts[l.Identifier] = l
		}
	}
	return an.targetLayouts, nil
}

// layoutDependents returns the target workflows whose steps reference the layout
func (an *analysis) layoutDependents(ctx context.Context, layoutID string) ([]promotion.ResourceDependency, error) {
	controls, err := an.reader.ListControlValuesByLayout(ctx, an.targetEnvID, an.orgID, layoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to list control values referencing layout: %w", err)
	}

	var workflowIDs []string
	seen := make(map[string]struct{})
	for _, cv := range controls {
		if _, dup := seen[cv.WorkflowID]; dup {
			continue
		}
		seen[cv.WorkflowID] = struct{}{}
		workflowIDs = append(workflowIDs, cv.WorkflowID)
	}
	if len(workflowIDs) == 0 {
		return nil, nil
	}

	workflows, err := an.reader.ListWorkflowsByIDs(ctx, an.targetEnvID, workflowIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list referencing workflows: %w", err)
	}

	deps := make([]promotion.ResourceDependency, 0, len(workflows))
	for _, wf := range workflows {
		deps = append(deps, promotion.ResourceDependency{
			ResourceType: promotion.ResourceTypeWorkflow,
			ResourceID:   wf.Identifier,
			ResourceName: wf.Name,
			IsBlocking:   true,
			Reason:       promotion.ReasonLayoutRequiredForWorkflow,
		})
	}
	return deps, nil
}
