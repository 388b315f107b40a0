package workflow

import (
	"fmt"

	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/promotion/normalize"
	"github.com/stacklok/envsync/internal/promotion/preload"
)

// stepVolatileFields are environment specific and dropped before comparison
var stepVolatileFields = []string{"id", "slug", "issues"}

// stepComparator matches steps by stepId and reports added, modified, moved
// and deleted steps with their positions
type stepComparator struct {
	rule *normalize.Rule
}

func (c *stepComparator) compare(source, target []preload.StepView) ([]promotion.ResourceDiff, error) {
	targetIndex := make(map[string]int, len(target))
	for j := range target {
		targetIndex[target[j].StepID] = j
	}

	var diffs []promotion.ResourceDiff
	sourceIDs := make(map[string]struct{}, len(source))

	for i := range source {
		step := &source[i]
		sourceIDs[step.StepID] = struct{}{}

		sourceNorm, err := c.normalize(step)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize source step %s: %w", step.StepID, err)
		}

		j, found := targetIndex[step.StepID]
		if !found {
			diffs = append(diffs, promotion.ResourceDiff{
				SourceResource: stepInfo(step),
				ResourceType:   promotion.ResourceTypeStep,
				Action:         promotion.ActionAdded,
				Diffs:          &promotion.ValueDiff{New: sourceNorm},
				StepType:       step.Type,
				NewIndex:       ptr(i),
			})
			continue
		}

		existing := &target[j]
		targetNorm, err := c.normalize(existing)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize target step %s: %w", existing.StepID, err)
		}

		switch {
		case !normalize.Equal(sourceNorm, targetNorm):
			diffs = append(diffs, promotion.ResourceDiff{
				SourceResource: stepInfo(step),
				TargetResource: stepInfo(existing),
				ResourceType:   promotion.ResourceTypeStep,
				Action:         promotion.ActionModified,
				Diffs:          &promotion.ValueDiff{Previous: targetNorm, New: sourceNorm},
				StepType:       step.Type,
				PreviousIndex:  ptr(j),
				NewIndex:       ptr(i),
			})
		case i != j:
			diffs = append(diffs, promotion.ResourceDiff{
				SourceResource: stepInfo(step),
				TargetResource: stepInfo(existing),
				ResourceType:   promotion.ResourceTypeStep,
				Action:         promotion.ActionMoved,
				StepType:       step.Type,
				PreviousIndex:  ptr(j),
				NewIndex:       ptr(i),
			})
		}
	}

	for j := range target {
		existing := &target[j]
		if _, found := sourceIDs[existing.StepID]; found {
			continue
		}
		diffs = append(diffs, promotion.ResourceDiff{
			TargetResource: stepInfo(existing),
			ResourceType:   promotion.ResourceTypeStep,
			Action:         promotion.ActionDeleted,
			StepType:       existing.Type,
			PreviousIndex:  ptr(j),
		})
	}

	return diffs, nil
}

func (c *stepComparator) normalize(step *preload.StepView) (normalize.Object, error) {
	obj, err := normalize.ToObject(step, stepVolatileFields...)
	if err != nil {
		return nil, err
	}
	return c.rule.Apply(obj)
}

func stepInfo(step *preload.StepView) *promotion.ResourceInfo {
	return &promotion.ResourceInfo{ID: step.StepID, Name: step.Name}
}

func ptr(i int) *int { return &i }
