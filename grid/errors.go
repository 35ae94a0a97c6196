package grid

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrOutOfRange is returned for cell access outside a layer's bounds.
	ErrOutOfRange = errors.New("grid: cell out of range")

	// ErrInvalidSize is returned for non-positive layer or tile dimensions.
	ErrInvalidSize = errors.New("grid: invalid size")
)

// OutOfRangeError reports the offending cell and the layer bounds it missed.
type OutOfRangeError struct {
	X, Y   int
	Bounds image.Rectangle
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("grid: cell (%d,%d) outside %v", e.X, e.Y, e.Bounds)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}
