// Package translation defines the optional localization diff capability.
// Installations without it use Noop.
package translation

import (
	"context"

	"github.com/stacklok/envsync/internal/promotion"
)

// Scope identifies the resource whose translations are compared
type Scope struct {
	ResourceType        promotion.ResourceType
	Identifier          string
	SourceEnvironmentID string
	TargetEnvironmentID string
	OrganizationID      string
}

// DiffProvider compares the translations of a resource between two environments
type DiffProvider interface {
	DiffTranslations(ctx context.Context, scope Scope) ([]promotion.ResourceDiff, error)
}

// Noop reports no translation changes
type Noop struct{}

var _ DiffProvider = Noop{}

// DiffTranslations always returns nil
func (Noop) DiffTranslations(_ context.Context, _ Scope) ([]promotion.ResourceDiff, error) {
	return nil, nil
}

// Features are the installation-wide switches that gate optional capabilities
type Features struct {
	Enterprise bool
	SelfHosted bool
}

// TranslationsEnabled reports whether translation diffing is available:
// always on hosted installations, only with an enterprise license when self-hosted
func (f Features) TranslationsEnabled() bool {
	return f.Enterprise || !f.SelfHosted
}

// Resolve picks the provider to use for the given features. A nil provider
// or disabled feature yields Noop.
func Resolve(provider DiffProvider, features Features) DiffProvider {
	if provider == nil || !features.TranslationsEnabled() {
		return Noop{}
	}
	return provider
}
