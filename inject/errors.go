package inject

import (
	"errors"
	"fmt"
)

// ErrRewind is returned when the base document cannot be read again from its
// start after the declaration scan.  Nothing has been written when it is
// returned.
var ErrRewind = errors.New("unable to rewind source file")

// A Phase identifies which part of the output was being written when an
// Inject call failed.
type Phase int

const (
	PhaseBase Phase = iota
	PhaseInjection
	PhaseDeclaration
	PhaseFlush
)

func (p Phase) String() string {
	switch p {
	case PhaseBase:
		return "failed to copy XML from source file"
	case PhaseInjection:
		return "failed to copy from injection file"
	case PhaseDeclaration:
		return "failed to inject DOCTYPE property"
	case PhaseFlush:
		return "failed to flush output"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// A CopyError is returned by Inject when writing the output fails.
type CopyError struct {
	Phase Phase
	Err   error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}
