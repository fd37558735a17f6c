package errs

import (
	"errors"
	"testing"
)

func TestInvalidWraps(t *testing.T) {
	err := Invalid("interval_ms must be > 0, got %d", 0)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if want := "invalid configuration: interval_ms must be > 0, got 0"; err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}
