package route

import (
	"errors"
	"fmt"
)

// ErrInvalid matches errors caused by the target itself: a malformed path or
// URL, a missing parameter, or an action that does not apply to it.
var ErrInvalid = errors.New("invalid target")

type invalidError struct {
	err error
}

func (e *invalidError) Error() string { return e.err.Error() }

func (e *invalidError) Unwrap() error { return e.err }

func (e *invalidError) Is(target error) bool { return target == ErrInvalid }

// Invalidf formats an error like fmt.Errorf that also matches ErrInvalid.
func Invalidf(format string, args ...any) error {
	return &invalidError{err: fmt.Errorf(format, args...)}
}
