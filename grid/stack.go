package grid

import (
	"slices"

	"github.com/milk9111/tileforge/tile"
)

// Stack is the bottom-to-top list of tiles at one cell. A tile appears at
// most once. The zero value is an empty stack.
type Stack struct {
	ids []tile.ID
}

// NewStack returns a stack holding ids bottom to top. Repeated ids keep
// only their last position.
func NewStack(ids ...tile.ID) *Stack {
	s := &Stack{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add places id on top, moving it there if it is already present.
func (s *Stack) Add(id tile.ID) {
	s.Remove(id)
	s.ids = append(s.ids, id)
}

// Remove deletes id and reports whether it was present.
func (s *Stack) Remove(id tile.ID) bool {
	if s == nil {
		return false
	}
	i := slices.Index(s.ids, id)
	if i < 0 {
		return false
	}
	s.ids = slices.Delete(s.ids, i, i+1)
	return true
}

// RemoveFunc deletes every tile for which fn returns true and reports how
// many were removed.
func (s *Stack) RemoveFunc(fn func(tile.ID) bool) int {
	if s == nil {
		return 0
	}
	n := len(s.ids)
	s.ids = slices.DeleteFunc(s.ids, fn)
	return n - len(s.ids)
}

func (s *Stack) Contains(id tile.ID) bool {
	return s != nil && slices.Contains(s.ids, id)
}

// ContainsFunc reports whether any tile satisfies fn.
func (s *Stack) ContainsFunc(fn func(tile.ID) bool) bool {
	return s != nil && slices.ContainsFunc(s.ids, fn)
}

// Top returns the topmost tile.
func (s *Stack) Top() (tile.ID, bool) {
	if s == nil || len(s.ids) == 0 {
		return tile.Nil, false
	}
	return s.ids[len(s.ids)-1], true
}

func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Tiles returns a copy of the stack, bottom first.
func (s *Stack) Tiles() []tile.ID {
	if s == nil {
		return nil
	}
	return slices.Clone(s.ids)
}

// Equal compares the ordered tile identities. A nil stack equals an empty one.
func (s *Stack) Equal(o *Stack) bool {
	return slices.Equal(s.view(), o.view())
}

func (s *Stack) Clone() *Stack {
	if s == nil {
		return nil
	}
	return &Stack{ids: slices.Clone(s.ids)}
}

func (s *Stack) view() []tile.ID {
	if s == nil {
		return nil
	}
	return s.ids
}
