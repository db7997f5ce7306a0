package shader

import (
	"errors"
	"fmt"
)

var (
	// ErrPresetParse is returned for a preset that is empty or malformed.
	ErrPresetParse = errors.New("shader: malformed preset")

	// ErrTooManyPasses is returned when a preset declares more passes,
	// LUTs or variables than a program may hold.
	ErrTooManyPasses = errors.New("shader: too many passes")

	// ErrInvalidGeometry is returned when a pass resolves to a zero or
	// negative dimension.
	ErrInvalidGeometry = errors.New("shader: invalid pass geometry")

	// ErrResourceAllocation is returned when the render chain could not
	// allocate a target, texture or LUT.
	ErrResourceAllocation = errors.New("shader: resource allocation failed")

	// ErrTrackerInit is returned when the variable tracker could not be set up.
	ErrTrackerInit = errors.New("shader: variable tracker init failed")

	// ErrChainReleased is returned when a torn down chain is used.
	ErrChainReleased = errors.New("shader: chain released")
)

// PassError attaches the pass index and requested size to an error.
type PassError struct {
	Index  int
	Width  int
	Height int
	Err    error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("pass %d (%dx%d): %v", e.Index, e.Width, e.Height, e.Err)
}

func (e *PassError) Unwrap() error {
	return e.Err
}

// LutError attaches the LUT identity to an error.
type LutError struct {
	ID   string
	Path string
	Err  error
}

func (e *LutError) Error() string {
	return fmt.Sprintf("lut %q (%s): %v", e.ID, e.Path, e.Err)
}

func (e *LutError) Unwrap() error {
	return e.Err
}

// wrapKind tags err with kind unless it already carries it.
func wrapKind(kind, err error) error {
	if err == nil || errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
