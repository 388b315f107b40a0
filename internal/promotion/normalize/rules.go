package normalize

import (
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// Rule is a compiled jq expression applied to both sides of a comparison
// after the built-in normalization. It lets operators ignore fields that are
// expected to differ between environments, e.g. `del(.tags)`.
type Rule struct {
	expression string
	code       *gojq.Code
}

// CompileRule parses and compiles a jq expression. An empty expression
// yields a nil rule, which is valid and leaves values untouched.
func CompileRule(expression string) (*Rule, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid compare rule %q: %w", expression, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("invalid compare rule %q: %w", expression, err)
	}

	return &Rule{expression: expression, code: code}, nil
}

// String returns the source expression
func (r *Rule) String() string {
	if r == nil {
		return ""
	}
	return r.expression
}

// Apply runs the rule against a canonical object. The rule must produce
// exactly one object.
func (r *Rule) Apply(obj Object) (Object, error) {
	if r == nil {
		return obj, nil
	}

	iter := r.code.Run(map[string]any(obj))
	value, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("compare rule %q produced no output", r.expression)
	}
	if err, isErr := value.(error); isErr {
		return nil, fmt.Errorf("compare rule %q failed: %w", r.expression, err)
	}
	if _, more := iter.Next(); more {
		return nil, fmt.Errorf("compare rule %q produced more than one output", r.expression)
	}

	out, isObject := value.(map[string]any)
	if !isObject {
		return nil, fmt.Errorf("compare rule %q must produce an object, got %T", r.expression, value)
	}
	return out, nil
}
