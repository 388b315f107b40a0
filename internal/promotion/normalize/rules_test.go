package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRule(t *testing.T) {
	t.Parallel()

	rule, err := CompileRule("   ")
	require.NoError(t, err)
	assert.Nil(t, rule)
	assert.Empty(t, rule.String())

	_, err = CompileRule("del(.tags")
	require.Error(t, err)

	rule, err = CompileRule(" del(.tags) ")
	require.NoError(t, err)
	assert.Equal(t, "del(.tags)", rule.String())
}

func TestRuleApply(t *testing.T) {
	t.Parallel()

	input := Object{"name": "welcome", "tags": []any{"a"}}

	tests := []struct {
		name       string
		expression string
		want       Object
		wantErr    string
	}{
		{name: "delete field", expression: "del(.tags)", want: Object{"name": "welcome"}},
		{name: "identity", expression: ".", want: input},
		{name: "non object output", expression: ".name", wantErr: "must produce an object"},
		{name: "multiple outputs", expression: ".,.", wantErr: "more than one output"},
		{name: "no output", expression: "empty", wantErr: "no output"},
		{name: "runtime error", expression: `error("boom")`, wantErr: "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rule, err := CompileRule(tt.expression)
			require.NoError(t, err)

			got, err := rule.Apply(input)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNilRuleApply(t *testing.T) {
	t.Parallel()

	var rule *Rule
	obj := Object{"a": 1.0}
	got, err := rule.Apply(obj)
	require.NoError(t, err)
	assert.Equal(t, obj, got)
}
