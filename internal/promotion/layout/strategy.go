package layout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/promotion/normalize"
	"github.com/stacklok/envsync/internal/store"
	"github.com/stacklok/envsync/internal/translation"
)

type options struct {
	rule         *normalize.Rule
	translations translation.DiffProvider
	now          func() time.Time
	newID        func() string
}

// Option is a functional option for configuring the layout strategy
type Option func(*options) error

// WithCompareRule sets the jq rule applied to normalized layouts
func WithCompareRule(rule *normalize.Rule) Option {
	return func(o *options) error {
		o.rule = rule
		return nil
	}
}

// WithTranslations sets the translation diff provider
func WithTranslations(provider translation.DiffProvider) Option {
	return func(o *options) error {
		if provider == nil {
			return errors.New("translation provider cannot be nil")
		}
		o.translations = provider
		return nil
	}
}

// WithClock overrides the time source used for audit fields
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		o.now = now
		return nil
	}
}

// WithIDGenerator overrides the generator used for new storage ids
func WithIDGenerator(newID func() string) Option {
	return func(o *options) error {
		o.newID = newID
		return nil
	}
}

// Strategy diffs and syncs layouts
type Strategy struct {
	diff *promotion.DiffOperation[domain.Layout]
	sync *promotion.SyncOperation[domain.Layout]
}

// NewStrategy wires the layout adapters
func NewStrategy(st store.Store, opts ...Option) (*Strategy, error) {
	o := &options{
		translations: translation.Noop{},
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	adapters := promotion.Adapters[domain.Layout]{
		Repository: &repository{reader: st},
		Comparator: &comparator{rule: o.rule, translations: o.translations},
		Sync:       &syncer{store: st, now: o.now, newID: o.newID},
		Delete:     &deleter{store: st},
	}

	diff, err := promotion.NewDiffOperation(promotion.ResourceTypeLayout, adapters)
	if err != nil {
		return nil, fmt.Errorf("failed to create layout diff operation: %w", err)
	}
	sync, err := promotion.NewSyncOperation(promotion.ResourceTypeLayout, adapters)
	if err != nil {
		return nil, fmt.Errorf("failed to create layout sync operation: %w", err)
	}
	return &Strategy{diff: diff, sync: sync}, nil
}

// ResourceType returns promotion.ResourceTypeLayout
func (*Strategy) ResourceType() promotion.ResourceType {
	return promotion.ResourceTypeLayout
}

// Diff returns the layout changes between two environments
func (s *Strategy) Diff(
	ctx context.Context, sourceEnvID, targetEnvID, orgID string, user promotion.UserContext,
) ([]promotion.DiffResult, error) {
	return s.diff.Diff(ctx, sourceEnvID, targetEnvID, orgID, user)
}

// Sync promotes layouts to the target environment
func (s *Strategy) Sync(ctx context.Context, sc *promotion.SyncContext) (*promotion.SyncResult, error) {
	return s.sync.Execute(ctx, sc)
}

// AvailableResourceIDs returns the identifiers of every syncable layout of an environment
func (s *Strategy) AvailableResourceIDs(ctx context.Context, envID, orgID string) ([]string, error) {
	return s.sync.AvailableResourceIDs(ctx, envID, orgID)
}
