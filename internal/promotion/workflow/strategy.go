package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/promotion/normalize"
	"github.com/stacklok/envsync/internal/promotion/preload"
	"github.com/stacklok/envsync/internal/store"
	"github.com/stacklok/envsync/internal/translation"
)

type options struct {
	rootRule     *normalize.Rule
	stepRule     *normalize.Rule
	translations translation.DiffProvider
	now          func() time.Time
	newID        func() string
}

// Option is a functional option for configuring the workflow strategy
type Option func(*options) error

// WithCompareRules sets the jq rules applied to normalized workflows and steps
func WithCompareRules(root, step *normalize.Rule) Option {
	return func(o *options) error {
		o.rootRule = root
		o.stepRule = step
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

// Strategy diffs and syncs workflows
type Strategy struct {
	diff *promotion.DiffOperation[*preload.WorkflowView]
	sync *promotion.SyncOperation[*preload.WorkflowView]
}

// NewStrategy wires the workflow adapters. The diff side reads preloaded
// environments from the container; the sync side always reads the store so
// it sees its own writes.
func NewStrategy(st store.Store, container *preload.Container, opts ...Option) (*Strategy, error) {
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
	if container == nil {
		container = preload.New(st)
	}

	cmp := &comparator{
		rule:         o.rootRule,
		steps:        &stepComparator{rule: o.stepRule},
		translations: o.translations,
	}
	writer := &syncer{store: st, now: o.now, newID: o.newID}
	remover := &deleter{store: st}

	diff, err := promotion.NewDiffOperation(promotion.ResourceTypeWorkflow, promotion.Adapters[*preload.WorkflowView]{
		Repository: &repository{reader: st, container: container, useCache: true},
		Comparator: cmp,
		Sync:       writer,
		Delete:     remover,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow diff operation: %w", err)
	}

	sync, err := promotion.NewSyncOperation(promotion.ResourceTypeWorkflow, promotion.Adapters[*preload.WorkflowView]{
		Repository: &repository{reader: st, container: container},
		Comparator: cmp,
		Sync:       writer,
		Delete:     remover,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow sync operation: %w", err)
	}

	return &Strategy{diff: diff, sync: sync}, nil
}

// ResourceType returns promotion.ResourceTypeWorkflow
func (*Strategy) ResourceType() promotion.ResourceType {
	return promotion.ResourceTypeWorkflow
}

// Diff returns the workflow changes between two environments
func (s *Strategy) Diff(
	ctx context.Context, sourceEnvID, targetEnvID, orgID string, user promotion.UserContext,
) ([]promotion.DiffResult, error) {
	return s.diff.Diff(ctx, sourceEnvID, targetEnvID, orgID, user)
}

// Sync promotes workflows to the target environment
func (s *Strategy) Sync(ctx context.Context, sc *promotion.SyncContext) (*promotion.SyncResult, error) {
	return s.sync.Execute(ctx, sc)
}

// AvailableResourceIDs returns the identifiers of every syncable workflow of an environment
func (s *Strategy) AvailableResourceIDs(ctx context.Context, envID, orgID string) ([]string, error) {
	return s.sync.AvailableResourceIDs(ctx, envID, orgID)
}
