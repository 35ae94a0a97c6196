package atlas

import "github.com/milk9111/tileforge/tile"

// EventKind identifies allocator notifications.
type EventKind int

const (
	// EventGrown follows a doubling of one buffer dimension.
	EventGrown EventKind = iota + 1
	// EventShrunk follows a halving and re-pack. Moves holds every surviving
	// slot's old and new coordinate.
	EventShrunk
	// EventWritten follows a pixel overwrite of Slot.
	EventWritten
	// EventCleared follows the release of Slot.
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventGrown:
		return "grown"
	case EventShrunk:
		return "shrunk"
	case EventWritten:
		return "written"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Event is delivered synchronously to subscribers after the change is applied.
type Event struct {
	Kind  EventKind
	Slot  tile.Coord
	Moves map[tile.Coord]tile.Coord
	Cols  int
	Rows  int
}

// Invalidates reports whether the event invalidates cached copies of the
// pixel buffer or previously read slot coordinates.
func (e Event) Invalidates() bool {
	switch e.Kind {
	case EventGrown, EventShrunk, EventWritten, EventCleared:
		return true
	}
	return false
}

type subscriber struct {
	id int
	fn func(Event)
}

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
	// Subscribers may unsubscribe from inside the callback.
	list := append([]subscriber(nil), s.list...)
	for _, sub := range list {
		sub.fn(evt)
	}
}
