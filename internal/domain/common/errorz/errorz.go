package errorz

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the domain services. Callers branch with errors.Is;
// the wrapped message carries the detail.
var (
	NotFound  = errors.New("not found")
	Conflict  = errors.New("conflict")
	Forbidden = errors.New("forbidden")
	Internal  = errors.New("internal error")
)

// Wrapf attaches a kind to a formatted message.
func Wrapf(kind error, format string, args ...interface{}) error {
	args = append(args, kind)
	return fmt.Errorf(format+": %w", args...)
}

// Kind extracts the taxonomy kind of err, or Internal when err carries none.
func Kind(err error) error {
	for _, kind := range []error{NotFound, Conflict, Forbidden, Internal} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return Internal
}
