package translation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/envsync/internal/promotion"
)

type staticProvider struct{}

func (staticProvider) DiffTranslations(_ context.Context, _ Scope) ([]promotion.ResourceDiff, error) {
	return []promotion.ResourceDiff{{Action: promotion.ActionAdded}}, nil
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider DiffProvider
		features Features
		wantNoop bool
	}{
		{name: "hosted", provider: staticProvider{}, features: Features{}, wantNoop: false},
		{name: "self hosted enterprise", provider: staticProvider{}, features: Features{SelfHosted: true, Enterprise: true}},
		{name: "self hosted community", provider: staticProvider{}, features: Features{SelfHosted: true}, wantNoop: true},
		{name: "no provider", provider: nil, features: Features{}, wantNoop: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Resolve(tt.provider, tt.features)
			diffs, err := got.DiffTranslations(context.Background(), Scope{ResourceType: promotion.ResourceTypeWorkflow})
			require.NoError(t, err)
			if tt.wantNoop {
				assert.Equal(t, Noop{}, got)
				assert.Empty(t, diffs)
				return
			}
			assert.Len(t, diffs, 1)
		})
	}
}
