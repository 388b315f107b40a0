package promotion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAdapter is returned when an adapter bundle is incomplete
var ErrMissingAdapter = errors.New("missing adapter")

func errMissingAdapter(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingAdapter, name)
}

// Error describes a failure while diffing or syncing a specific resource
type Error struct {
	ResourceType ResourceType
	ResourceID   string
	Op           string
	Err          error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to %s %s %q: %v", e.Op, e.ResourceType, e.ResourceID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errorChain renders every layer of a wrapped error, outermost first. It
// stands in for a stack trace in SyncFailure.
func errorChain(err error) string {
	var layers []string
	for err != nil {
		layers = append(layers, err.Error())
		err = errors.Unwrap(err)
	}
	if len(layers) <= 1 {
		return ""
	}
	return strings.Join(layers, "\n")
}
