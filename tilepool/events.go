package tilepool

import (
	"github.com/milk9111/tileforge/atlas"
	"github.com/milk9111/tileforge/tile"
)

// EventKind identifies pool notifications.
type EventKind int

const (
	EventTileAdded EventKind = iota + 1
	EventTileRemoved
	EventTileUpdated
	// EventInvalidated relays an atlas event that invalidates cached pixels
	// or slot coordinates. Atlas holds the original event.
	EventInvalidated
)

func (k EventKind) String() string {
	switch k {
	case EventTileAdded:
		return "tile_added"
	case EventTileRemoved:
		return "tile_removed"
	case EventTileUpdated:
		return "tile_updated"
	case EventInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Event is delivered synchronously after the change is applied.
type Event struct {
	Kind  EventKind
	Tile  tile.ID
	Atlas atlas.Event
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
	list := append([]subscriber(nil), s.list...)
	for _, sub := range list {
		sub.fn(evt)
	}
}
