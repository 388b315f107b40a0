// Package layout provides the layout adapters for the promotion engine
package layout

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/promotion/normalize"
	"github.com/stacklok/envsync/internal/store"
	"github.com/stacklok/envsync/internal/translation"
)

var volatileFields = []string{
	"id",
	"environmentId",
	"organizationId",
	"createdAt",
	"updatedAt",
	"updatedBy",
	"origin",
	"isDeleted",
}

type repository struct {
	reader store.Reader
}

var (
	_ promotion.Repository[domain.Layout]        = (*repository)(nil)
	_ promotion.SessionRepository[domain.Layout] = (*repository)(nil)
)

// FetchSyncable returns the internal, non-deleted layouts of an environment
func (r *repository) FetchSyncable(ctx context.Context, envID, orgID string) ([]domain.Layout, error) {
	return r.FetchSyncableFrom(ctx, r.reader, envID, orgID)
}

// FetchSyncableFrom lists the syncable layouts through reader
func (r *repository) FetchSyncableFrom(
	ctx context.Context, reader store.Reader, envID, orgID string,
) ([]domain.Layout, error) {
	all, err := reader.ListLayouts(ctx, envID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	layouts := make([]domain.Layout, 0, len(all))
	for _, l := range all {
		if l.IsSyncable() {
			layouts = append(layouts, l)
		}
	}
	return layouts, nil
}

// ToMap indexes layouts by identifier
func (r *repository) ToMap(layouts []domain.Layout) map[string]domain.Layout {
	return promotion.IndexBy(layouts, r.IdentifierOf)
}

// IdentifierOf returns the layout identifier, which is stable across environments
func (*repository) IdentifierOf(l domain.Layout) string {
	return l.Identifier
}

func (*repository) Describe(l domain.Layout) promotion.ResourceInfo {
	info := promotion.ResourceInfo{ID: l.Identifier, Name: l.Name, UpdatedBy: l.UpdatedBy}
	if !l.UpdatedAt.IsZero() {
		info.UpdatedAt = &l.UpdatedAt
	}
	return info
}

// comparator diffs the normalized layout bodies and appends translation diffs
type comparator struct {
	rule         *normalize.Rule
	translations translation.DiffProvider
}

var _ promotion.Comparator[domain.Layout] = (*comparator)(nil)

// Compare diffs the layout fields and, when enabled, its translations
func (c *comparator) Compare(
	ctx context.Context, source, target domain.Layout, _ promotion.UserContext,
) (*promotion.Comparison, error) {
	sourceNorm, err := c.normalize(source)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize source layout: %w", err)
	}
	targetNorm, err := c.normalize(target)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize target layout: %w", err)
	}

	comparison := &promotion.Comparison{}
	if !normalize.Equal(sourceNorm, targetNorm) {
		comparison.RootDiff = &promotion.ValueDiff{Previous: targetNorm, New: sourceNorm}
	}

	translationDiffs, err := c.translations.DiffTranslations(ctx, translation.Scope{
		ResourceType:        promotion.ResourceTypeLayout,
		Identifier:          source.Identifier,
		SourceEnvironmentID: source.EnvironmentID,
		TargetEnvironmentID: target.EnvironmentID,
		OrganizationID:      source.OrganizationID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to diff translations: %w", err)
	}
	comparison.SubDiffs = translationDiffs

	return comparison, nil
}

func (c *comparator) normalize(l domain.Layout) (normalize.Object, error) {
	obj, err := normalize.ToObject(l, volatileFields...)
	if err != nil {
		return nil, err
	}
	return c.rule.Apply(obj)
}

type syncer struct {
	store store.Store
	now   func() time.Time
	newID func() string
}

var _ promotion.Syncer[domain.Layout] = (*syncer)(nil)

// ApplyToTarget creates the layout in the target or updates the existing one in place
func (s *syncer) ApplyToTarget(ctx context.Context, sc *promotion.SyncContext, source domain.Layout) error {
	session := sc.SessionOr(s.store)

	existing, err := session.FindLayout(ctx, sc.TargetEnvironmentID, sc.User.OrganizationID, source.Identifier)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to look up target layout: %w", err)
	}

	now := s.now()
	l := &domain.Layout{
		ID:             s.newID(),
		EnvironmentID:  sc.TargetEnvironmentID,
		OrganizationID: sc.User.OrganizationID,
		Identifier:     source.Identifier,
		Name:           source.Name,
		Description:    source.Description,
		IsDefault:      source.IsDefault,
		Channel:        source.Channel,
		ControlValues:  maps.Clone(source.ControlValues),
		Variables:      maps.Clone(source.Variables),
		Origin:         domain.OriginInternal,
		CreatedAt:      now,
		UpdatedAt:      now,
		UpdatedBy:      &domain.UserRef{ID: sc.User.UserID},
	}

	if existing == nil {
		if err := session.CreateLayout(ctx, l); err != nil {
			return fmt.Errorf("failed to create layout: %w", err)
		}
		return nil
	}

	l.ID = existing.ID
	l.CreatedAt = existing.CreatedAt
	if err := session.UpdateLayout(ctx, l); err != nil {
		return fmt.Errorf("failed to update layout: %w", err)
	}
	return nil
}

type deleter struct {
	store store.Store
}

var _ promotion.Deleter[domain.Layout] = (*deleter)(nil)

// RemoveFromTarget deletes the target layout
func (d *deleter) RemoveFromTarget(ctx context.Context, sc *promotion.SyncContext, target domain.Layout) error {
	if err := sc.SessionOr(d.store).DeleteLayout(ctx, sc.TargetEnvironmentID, target.ID); err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	return nil
}
