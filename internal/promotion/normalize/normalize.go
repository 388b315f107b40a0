// Package normalize turns resources into canonical JSON values so two
// versions of the same resource taken from different environments can be
// compared field by field.
package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Object is a canonical JSON object
type Object = map[string]any

// ToObject converts v into its canonical JSON object form and removes the
// given top-level keys. Numbers become float64, structs become maps.
func ToObject(v any, drop ...string) (Object, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value as object: %w", err)
	}
	if obj == nil {
		obj = Object{}
	}

	for _, key := range drop {
		delete(obj, key)
	}
	return obj, nil
}

var equalOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
}

// Equal reports whether two canonical values are equal. Nil and empty
// collections compare equal.
func Equal(a, b any) bool {
	return cmp.Equal(a, b, equalOpts...)
}

// Explain returns a human readable description of the difference between two
// canonical values, or an empty string when they are equal
func Explain(previous, next any) string {
	return cmp.Diff(previous, next, equalOpts...)
}
