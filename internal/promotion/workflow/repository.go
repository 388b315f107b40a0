// Package workflow provides the workflow adapters for the promotion engine:
// repository, comparator (including step level diffs), sync and delete.
package workflow

import (
	"context"
	"fmt"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/promotion/preload"
	"github.com/stacklok/envsync/internal/store"
)

// repository lists workflows as assembled views. With useCache set, a
// preloaded environment is served from the container; otherwise every call
// reads the store.
type repository struct {
	reader    store.Reader
	container *preload.Container
	useCache  bool
}

var (
	_ promotion.Repository[*preload.WorkflowView]        = (*repository)(nil)
	_ promotion.SessionRepository[*preload.WorkflowView] = (*repository)(nil)
)

// FetchSyncable returns the syncable workflows of an environment
func (r *repository) FetchSyncable(ctx context.Context, envID, orgID string) ([]*preload.WorkflowView, error) {
	if r.useCache {
		if workflows, ok := r.container.Workflows(envID); ok {
			views := make([]*preload.WorkflowView, 0, len(workflows))
			for _, wf := range workflows {
				views = append(views, r.container.ViewOf(wf))
			}
			return views, nil
		}
	}

	return r.FetchSyncableFrom(ctx, r.reader, envID, orgID)
}

// FetchSyncableFrom lists and assembles the syncable workflows through reader,
// bypassing the container
func (r *repository) FetchSyncableFrom(
	ctx context.Context, reader store.Reader, envID, orgID string,
) ([]*preload.WorkflowView, error) {
	all, err := reader.ListWorkflows(ctx, envID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	workflows := make([]domain.Workflow, 0, len(all))
	for _, wf := range all {
		if wf.IsSyncable() {
			workflows = append(workflows, wf)
		}
	}
	return preload.Assemble(ctx, reader, orgID, workflows)
}

// ToMap indexes views by workflow identifier
func (r *repository) ToMap(views []*preload.WorkflowView) map[string]*preload.WorkflowView {
	return promotion.IndexBy(views, r.IdentifierOf)
}

// IdentifierOf returns the workflow identifier
func (*repository) IdentifierOf(view *preload.WorkflowView) string {
	return view.Workflow.Identifier
}

// Describe returns the workflow metadata
func (*repository) Describe(view *preload.WorkflowView) promotion.ResourceInfo {
	wf := &view.Workflow
	info := promotion.ResourceInfo{
		ID:        wf.Identifier,
		Name:      wf.Name,
		UpdatedBy: wf.UpdatedBy,
	}
	if !wf.UpdatedAt.IsZero() {
		updatedAt := wf.UpdatedAt
		info.UpdatedAt = &updatedAt
	}
	return info
}
