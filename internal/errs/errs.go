package errs

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned whenever tunables cannot produce a
// result: non-positive intervals, empty or zero-weight prize tables, zero
// slices. Callers test for it with errors.Is.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Invalid wraps ErrInvalidConfiguration with a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
