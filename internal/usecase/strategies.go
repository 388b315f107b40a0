package usecase

import (
	"context"
	"fmt"

	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/promotion/layout"
	"github.com/stacklok/envsync/internal/promotion/normalize"
	"github.com/stacklok/envsync/internal/promotion/preload"
	"github.com/stacklok/envsync/internal/promotion/workflow"
	"github.com/stacklok/envsync/internal/store"
	"github.com/stacklok/envsync/internal/translation"
)

// Strategy diffs and syncs one resource type
type Strategy interface {
	ResourceType() promotion.ResourceType
	Diff(ctx context.Context, sourceEnvID, targetEnvID, orgID string, user promotion.UserContext) ([]promotion.DiffResult, error)
	Sync(ctx context.Context, sc *promotion.SyncContext) (*promotion.SyncResult, error)
	AvailableResourceIDs(ctx context.Context, envID, orgID string) ([]string, error)
}

// StrategyFactory builds the strategies of one request around its preload container.
// Strategies are returned in write order: a type comes before the types that reference it.
type StrategyFactory func(container *preload.Container) ([]Strategy, error)

// CompareRules are the optional jq rules applied after normalization
type CompareRules struct {
	Workflow *normalize.Rule
	Step     *normalize.Rule
	Layout   *normalize.Rule
}

// NewStrategyFactory returns a factory building the layout and workflow strategies
func NewStrategyFactory(st store.Store, rules CompareRules, translations translation.DiffProvider) StrategyFactory {
	if translations == nil {
		translations = translation.Noop{}
	}
	return func(container *preload.Container) ([]Strategy, error) {
		layouts, err := layout.NewStrategy(st,
			layout.WithCompareRule(rules.Layout),
			layout.WithTranslations(translations),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create layout strategy: %w", err)
		}
		workflows, err := workflow.NewStrategy(st, container,
			workflow.WithCompareRules(rules.Workflow, rules.Step),
			workflow.WithTranslations(translations),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create workflow strategy: %w", err)
		}
		return []Strategy{layouts, workflows}, nil
	}
}

// SupportedResourceTypes are the resource types a publish can select
var SupportedResourceTypes = []promotion.ResourceType{
	promotion.ResourceTypeLayout,
	promotion.ResourceTypeWorkflow,
}
