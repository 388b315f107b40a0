package workflow

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/promotion/preload"
	"github.com/stacklok/envsync/internal/store"
)

// syncer writes a source workflow view into the target environment. Storage
// ids of the target workflow and of steps that already exist there are kept.
type syncer struct {
	store store.Store
	now   func() time.Time
	newID func() string
}

var _ promotion.Syncer[*preload.WorkflowView] = (*syncer)(nil)

// ApplyToTarget creates or updates the workflow with its control values and preferences
func (s *syncer) ApplyToTarget(ctx context.Context, sc *promotion.SyncContext, view *preload.WorkflowView) error {
	session := sc.SessionOr(s.store)
	orgID := sc.User.OrganizationID

	existing, err := session.FindWorkflow(ctx, sc.TargetEnvironmentID, orgID, view.Workflow.Identifier)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to look up target workflow: %w", err)
	}

	wf := s.buildWorkflow(sc, view, existing)
	if existing == nil {
		if err := session.CreateWorkflow(ctx, wf); err != nil {
			return fmt.Errorf("failed to create workflow: %w", err)
		}
	} else {
		if err := session.UpdateWorkflow(ctx, wf); err != nil {
			return fmt.Errorf("failed to update workflow: %w", err)
		}
	}

	if err := session.ReplaceControlValues(ctx, wf.ID, s.buildControls(sc, view, wf)); err != nil {
		return fmt.Errorf("failed to write control values: %w", err)
	}
	if err := session.ReplacePreferences(ctx, wf.ID, s.buildPreferences(sc, view, wf)); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

func (s *syncer) buildWorkflow(
	sc *promotion.SyncContext, view *preload.WorkflowView, existing *domain.Workflow,
) *domain.Workflow {
	src := view.Workflow
	now := s.now()

	wf := &domain.Workflow{
		ID:              s.newID(),
		EnvironmentID:   sc.TargetEnvironmentID,
		OrganizationID:  sc.User.OrganizationID,
		Identifier:      src.Identifier,
		Name:            src.Name,
		Description:     src.Description,
		Tags:            slices.Clone(src.Tags),
		Active:          src.Active,
		Critical:        src.Critical,
		ValidatePayload: src.ValidatePayload,
		PayloadSchema:   maps.Clone(src.PayloadSchema),
		PayloadExample:  maps.Clone(src.PayloadExample),
		Slug:            src.Slug,
		Origin:          domain.OriginInternal,
		Status:          src.Status,
		CreatedAt:       now,
		UpdatedAt:       now,
		UpdatedBy:       &domain.UserRef{ID: sc.User.UserID},
	}

	existingSteps := make(map[string]string)
	if existing != nil {
		wf.ID = existing.ID
		wf.Slug = existing.Slug
		wf.CreatedAt = existing.CreatedAt
		for _, step := range existing.Steps {
			existingSteps[step.StepID] = step.ID
		}
	}

	wf.Steps = make([]domain.Step, 0, len(src.Steps))
	for _, step := range src.Steps {
		id, ok := existingSteps[step.StepID]
		if !ok {
			id = s.newID()
		}
		wf.Steps = append(wf.Steps, domain.Step{
			ID:     id,
			StepID: step.StepID,
			Name:   step.Name,
			Type:   step.Type,
			Slug:   step.Slug,
		})
	}
	return wf
}

// buildControls maps source control values onto the target step ids
func (s *syncer) buildControls(
	sc *promotion.SyncContext, view *preload.WorkflowView, wf *domain.Workflow,
) []domain.ControlValues {
	targetStepIDs := make(map[string]string, len(wf.Steps))
	for _, step := range wf.Steps {
		targetStepIDs[step.StepID] = step.ID
	}

	var controls []domain.ControlValues
	for _, step := range view.Steps {
		if step.ControlValues == nil {
			continue
		}
		controls = append(controls, domain.ControlValues{
			ID:             s.newID(),
			EnvironmentID:  sc.TargetEnvironmentID,
			OrganizationID: sc.User.OrganizationID,
			WorkflowID:     wf.ID,
			StepID:         targetStepIDs[step.StepID],
			Values:         maps.Clone(step.ControlValues),
			UpdatedAt:      wf.UpdatedAt,
		})
	}
	return controls
}

func (s *syncer) buildPreferences(
	sc *promotion.SyncContext, view *preload.WorkflowView, wf *domain.Workflow,
) []domain.Preferences {
	if view.Preferences == nil {
		return nil
	}
	return []domain.Preferences{{
		ID:             s.newID(),
		EnvironmentID:  sc.TargetEnvironmentID,
		OrganizationID: sc.User.OrganizationID,
		WorkflowID:     wf.ID,
		Settings:       maps.Clone(view.Preferences),
		UpdatedAt:      wf.UpdatedAt,
	}}
}

// deleter removes a workflow from the target. The store cascades to its
// control values and preferences.
type deleter struct {
	store store.Store
}

var _ promotion.Deleter[*preload.WorkflowView] = (*deleter)(nil)

// RemoveFromTarget deletes the target workflow
func (d *deleter) RemoveFromTarget(ctx context.Context, sc *promotion.SyncContext, view *preload.WorkflowView) error {
	if err := sc.SessionOr(d.store).DeleteWorkflow(ctx, sc.TargetEnvironmentID, view.Workflow.ID); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	return nil
}
