package atlas

import (
	"bytes"
	"image"
	"slices"

	"github.com/google/uuid"
)

// ResourceID names a pixel resource in a Store.
type ResourceID = uuid.UUID

// Resource is anything that exposes a current pixel buffer. *Allocator
// satisfies it; its buffer pointer changes across grow and shrink, so the
// store holds the owner rather than the image.
type Resource interface {
	Image() *image.RGBA
}

type storeEntry struct {
	res  Resource
	refs int
}

// Store is a reference-counted set of pixel resources shared by all pools.
// Adding a known resource bumps its count; it is evicted when the count
// returns to zero.
type Store struct {
	entries map[ResourceID]*storeEntry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[ResourceID]*storeEntry)}
}

// AddResource registers res under id, or bumps the use count if id is already
// present. The first registered resource wins. It returns the new count.
func (s *Store) AddResource(id ResourceID, res Resource) int {
	if e, ok := s.entries[id]; ok {
		e.refs++
		return e.refs
	}
	s.entries[id] = &storeEntry{res: res, refs: 1}
	return 1
}

// RemoveResource drops one use of id and reports whether it was evicted.
// Unknown ids are ignored.
func (s *Store) RemoveResource(id ResourceID) bool {
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.refs--
	if e.refs > 0 {
		return false
	}
	delete(s.entries, id)
	return true
}

// Resource returns the resource registered under id.
func (s *Store) Resource(id ResourceID) (Resource, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.res, true
}

// Refs returns the current use count of id, zero if absent.
func (s *Store) Refs(id ResourceID) int {
	if e, ok := s.entries[id]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of live resources.
func (s *Store) Len() int {
	return len(s.entries)
}

// IDs returns the live resource ids in a stable order.
func (s *Store) IDs() []ResourceID {
	ids := make([]ResourceID, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b ResourceID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids
}
