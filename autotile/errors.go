package autotile

import "errors"

var (
	// ErrOutOfRange is returned for template slots or rule tile indices
	// outside a class.
	ErrOutOfRange = errors.New("autotile: index out of range")

	// ErrInvalidClass is returned when a class definition is malformed.
	ErrInvalidClass = errors.New("autotile: invalid class")

	// ErrUnknownClass is returned when a class name is not registered.
	ErrUnknownClass = errors.New("autotile: unknown class")

	// ErrUnknownDirection is returned for direction names other than the
	// eight compass points.
	ErrUnknownDirection = errors.New("autotile: unknown direction")
)
