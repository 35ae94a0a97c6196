package grid

import (
	"image"

	"github.com/milk9111/tileforge/tile"
)

// EventKind identifies layer modification events.
type EventKind int

const (
	// CellChanged is emitted when a cell's stack changes.
	CellChanged EventKind = iota + 1
	// LayerResized is emitted after Resize.
	LayerResized
)

func (k EventKind) String() string {
	switch k {
	case CellChanged:
		return "cell_changed"
	case LayerResized:
		return "layer_resized"
	default:
		return "unknown"
	}
}

// Event describes one modification. Cell is set for CellChanged and Bounds
// holds the new bounds for LayerResized.
type Event struct {
	Kind   EventKind
	Cell   tile.Coord
	Bounds image.Rectangle
}

type subscriber struct {
	id int
	fn func(Event)
}

// subscribers delivers events synchronously. Nothing is retained between
// calls to emit.
type subscribers struct {
	next int
	list []subscriber
}

func (s *subscribers) add(fn func(Event)) func() {
	s.next++
	id := s.next
	s.list = append(s.list, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.list {
			if sub.id == id {
				s.list = append(s.list[:i], s.list[i+1:]...)
				return
			}
		}
	}
}

func (s *subscribers) emit(evt Event) {
	if len(s.list) == 0 {
		return
	}
	list := append([]subscriber(nil), s.list...)
	for _, sub := range list {
		sub.fn(evt)
	}
}
