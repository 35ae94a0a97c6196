package tilepool

import (
	"errors"

	"github.com/milk9111/tileforge/atlas"
)

// Sentinel errors for the tilepool package.
var (
	// ErrDimensionMismatch is the atlas sentinel, re-exported so callers can
	// test pool and allocator failures against one value.
	ErrDimensionMismatch = atlas.ErrDimensionMismatch

	// ErrUnknownIdentity is returned when an operation names a tile the pool
	// does not own, including tiles that were removed.
	ErrUnknownIdentity = errors.New("tilepool: unknown tile identity")

	// ErrInvalidSource is returned when a dependent tile is used as a
	// transform source or written directly.
	ErrInvalidSource = errors.New("tilepool: dependent tiles derive their pixels from a physical tile")

	// ErrInvalidOptions is returned for negative spacing or margins.
	ErrInvalidOptions = errors.New("tilepool: invalid import options")

	// ErrPoolExists is returned when a manager already holds a pool of that name.
	ErrPoolExists = errors.New("tilepool: pool already exists")

	// ErrUnknownPool is returned when a manager has no pool of that name.
	ErrUnknownPool = errors.New("tilepool: unknown pool")
)
