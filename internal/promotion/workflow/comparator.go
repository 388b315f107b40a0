package workflow

import (
	"context"
	"fmt"

	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/promotion/normalize"
	"github.com/stacklok/envsync/internal/promotion/preload"
	"github.com/stacklok/envsync/internal/translation"
)

// volatileFields differ between environments or are maintained by the
// runtime and never take part in a comparison. Steps are compared separately.
var volatileFields = []string{
	"id",
	"environmentId",
	"organizationId",
	"slug",
	"createdAt",
	"updatedAt",
	"updatedBy",
	"origin",
	"status",
	"issues",
	"payloadExample",
	"steps",
}

type comparator struct {
	rule         *normalize.Rule
	steps        *stepComparator
	translations translation.DiffProvider
}

var (
	_ promotion.Comparator[*preload.WorkflowView]         = (*comparator)(nil)
	_ promotion.AdditionComparator[*preload.WorkflowView] = (*comparator)(nil)
)

// Compare diffs the workflow root fields, its steps and, when enabled, its translations
func (c *comparator) Compare(
	ctx context.Context, source, target *preload.WorkflowView, _ promotion.UserContext,
) (*promotion.Comparison, error) {
	sourceNorm, err := c.normalize(source)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize source workflow: %w", err)
	}
	targetNorm, err := c.normalize(target)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize target workflow: %w", err)
	}

	comparison := &promotion.Comparison{}
	if !normalize.Equal(sourceNorm, targetNorm) {
		comparison.RootDiff = &promotion.ValueDiff{Previous: targetNorm, New: sourceNorm}
	}

	stepDiffs, err := c.steps.compare(source.Steps, target.Steps)
	if err != nil {
		return nil, err
	}
	comparison.SubDiffs = stepDiffs

	translationDiffs, err := c.translations.DiffTranslations(ctx, translation.Scope{
		ResourceType:        promotion.ResourceTypeWorkflow,
		Identifier:          source.Workflow.Identifier,
		SourceEnvironmentID: source.Workflow.EnvironmentID,
		TargetEnvironmentID: target.Workflow.EnvironmentID,
		OrganizationID:      source.Workflow.OrganizationID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to diff translations: %w", err)
	}
	comparison.SubDiffs = append(comparison.SubDiffs, translationDiffs...)

	return comparison, nil
}

// CompareAdded reports every step of a workflow missing from the target as added
func (c *comparator) CompareAdded(
	_ context.Context, source *preload.WorkflowView, _ promotion.UserContext,
) ([]promotion.ResourceDiff, error) {
	return c.steps.compare(source.Steps, nil)
}

func (c *comparator) normalize(view *preload.WorkflowView) (normalize.Object, error) {
	obj, err := normalize.ToObject(view.Workflow, volatileFields...)
	if err != nil {
		return nil, err
	}
	prefs, err := normalize.ToObject(view.Preferences)
	if err != nil {
		return nil, err
	}
	obj["preferences"] = prefs
	return c.rule.Apply(obj)
}
