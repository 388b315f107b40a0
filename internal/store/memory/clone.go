package memory

import (
	"slices"

	"github.com/stacklok/envsync/internal/domain"
)

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return typed
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneUser(u *domain.UserRef) *domain.UserRef {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func cloneWorkflow(w domain.Workflow) domain.Workflow {
	w.Tags = slices.Clone(w.Tags)
	w.PayloadSchema = cloneMap(w.PayloadSchema)
	w.PayloadExample = cloneMap(w.PayloadExample)
	w.Issues = cloneMap(w.Issues)
	w.UpdatedBy = cloneUser(w.UpdatedBy)
	steps := make([]domain.Step, len(w.Steps))
	for i, step := range w.Steps {
		step.Issues = cloneMap(step.Issues)
		steps[i] = step
	}
	w.Steps = steps
	return w
}

func cloneControls(c domain.ControlValues) domain.ControlValues {
	c.Values = cloneMap(c.Values)
	return c
}

func clonePreferences(p domain.Preferences) domain.Preferences {
	p.Settings = cloneMap(p.Settings)
	return p
}

func cloneLayout(l domain.Layout) domain.Layout {
	l.ControlValues = cloneMap(l.ControlValues)
	l.Variables = cloneMap(l.Variables)
	l.UpdatedBy = cloneUser(l.UpdatedBy)
	return l
}
