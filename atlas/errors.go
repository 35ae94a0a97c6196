package atlas

import "errors"

// Sentinel errors for the atlas package.
var (
	// ErrDimensionMismatch is returned when a tile or pixel size disagrees with
	// the allocator's tile size.
	ErrDimensionMismatch = errors.New("atlas: tile dimensions do not match allocator")

	// ErrSlotNotAllocated is returned when a slot outside the buffer or not
	// currently occupied is freed, written or read.
	ErrSlotNotAllocated = errors.New("atlas: slot is not allocated")

	// ErrAtlasExhausted is returned when growing the buffer would exceed
	// MaxDimension. It is the only resource-exhaustion failure.
	ErrAtlasExhausted = errors.New("atlas: buffer cannot grow further")
)
