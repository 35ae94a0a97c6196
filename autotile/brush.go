package autotile

import (
	"fmt"
	"slices"

	"github.com/milk9111/tileforge/grid"
	"github.com/milk9111/tileforge/tile"
)

// Brush writes tiles into a layer around a target cell. The variants are
// *StaticBrush and *DynamicBrush. Brushes never fail: cells outside the
// layer are skipped.
type Brush interface {
	Name() string
	Apply(l *grid.Layer, x, y int)
	brush()
}

// StaticBrush stamps a fixed W x H pattern with its top-left slot at the
// target cell. Empty slots leave cells untouched.
type StaticBrush struct {
	name  string
	w, h  int
	slots []tile.ID
}

func NewStaticBrush(name string, w, h int) (*StaticBrush, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("autotile: static brush %q size %dx%d: %w", name, w, h, ErrOutOfRange)
	}
	return &StaticBrush{name: name, w: w, h: h, slots: make([]tile.ID, w*h)}, nil
}

func (b *StaticBrush) Name() string { return b.name }

func (b *StaticBrush) Size() (w, h int) { return b.w, b.h }

// SetSlot assigns the tile stamped at slot i. tile.Nil empties the slot.
func (b *StaticBrush) SetSlot(i int, id tile.ID) error {
	if i < 0 || i >= len(b.slots) {
		return fmt.Errorf("autotile: static brush %q slot %d: %w", b.name, i, ErrOutOfRange)
	}
	b.slots[i] = id
	return nil
}

func (b *StaticBrush) Slot(i int) tile.ID {
	if i < 0 || i >= len(b.slots) {
		return tile.Nil
	}
	return b.slots[i]
}

func (b *StaticBrush) Apply(l *grid.Layer, x, y int) {
	for i, id := range b.slots {
		if id.IsNil() {
			continue
		}
		cx, cy := x+i%b.w, y+i/b.w
		if !l.InBounds(cx, cy) {
			continue
		}
		_ = l.AddTile(cx, cy, id)
	}
}

func (*StaticBrush) brush() {}

// DynamicBrush places tiles chosen by its class's rule table. The template
// is the brush palette: a cell counts as occupied when its stack holds any
// template tile.
type DynamicBrush struct {
	name     string
	class    *Class
	template []tile.ID
}

func NewDynamicBrush(name string, class *Class) *DynamicBrush {
	return &DynamicBrush{name: name, class: class, template: make([]tile.ID, class.Slots)}
}

func (b *DynamicBrush) Name() string { return b.name }

// Class returns the class whose rules drive the brush.
func (b *DynamicBrush) Class() *Class { return b.class }

// SetClass switches rule tables. Template slots beyond the new class's
// slot count are dropped.
func (b *DynamicBrush) SetClass(c *Class) {
	t := make([]tile.ID, c.Slots)
	copy(t, b.template)
	b.class = c
	b.template = t
}

// SetSlot assigns the template tile at slot i. tile.Nil empties the slot.
func (b *DynamicBrush) SetSlot(i int, id tile.ID) error {
	if i < 0 || i >= len(b.template) {
		return fmt.Errorf("autotile: brush %q slot %d of %d: %w", b.name, i, len(b.template), ErrOutOfRange)
	}
	b.template[i] = id
	return nil
}

func (b *DynamicBrush) Slot(i int) tile.ID {
	if i < 0 || i >= len(b.template) {
		return tile.Nil
	}
	return b.template[i]
}

// Template returns a copy of the palette in slot order.
func (b *DynamicBrush) Template() []tile.ID { return slices.Clone(b.template) }

// IsMember reports whether id is one of the brush's template tiles.
func (b *DynamicBrush) IsMember(id tile.ID) bool {
	return !id.IsNil() && slices.Contains(b.template, id)
}

// Mask returns the neighbour bits of (x, y) whose cells hold a member tile.
func (b *DynamicBrush) Mask(l *grid.Layer, x, y int) uint8 {
	var m uint8
	for _, d := range Directions {
		dx, dy := d.Offset()
		if b.occupied(l, x+dx, y+dy) {
			m |= uint8(d)
		}
	}
	return m
}

// Apply places the best matching template tile at (x, y), replacing any
// member tile there, then refreshes the member tiles in the surrounding ring.
func (b *DynamicBrush) Apply(l *grid.Layer, x, y int) {
	if !l.InBounds(x, y) {
		return
	}
	b.resolve(l, x, y)
	b.refreshRing(l, x, y)
}

// Erase removes member tiles at (x, y) and refreshes the surrounding ring.
func (b *DynamicBrush) Erase(l *grid.Layer, x, y int) {
	if !l.InBounds(x, y) {
		return
	}
	_, _ = l.RemoveTileFunc(x, y, b.IsMember)
	b.refreshRing(l, x, y)
}

func (*DynamicBrush) brush() {}

// resolve replaces the members at (x, y) with the tile selected for the
// cell's current mask.
func (b *DynamicBrush) resolve(l *grid.Layer, x, y int) {
	mask := b.Mask(l, x, y)
	_, _ = l.RemoveTileFunc(x, y, b.IsMember)
	id := b.pick(mask)
	if id.IsNil() {
		return
	}
	_ = l.AddTile(x, y, id)
}

func (b *DynamicBrush) refreshRing(l *grid.Layer, x, y int) {
	for _, d := range Directions {
		dx, dy := d.Offset()
		if b.occupied(l, x+dx, y+dy) {
			b.resolve(l, x+dx, y+dy)
		}
	}
}

// pick falls back to the primary slot when the selected slot is empty.
func (b *DynamicBrush) pick(mask uint8) tile.ID {
	if id := b.Slot(b.class.Table.SelectTile(mask)); !id.IsNil() {
		return id
	}
	return b.Slot(b.class.Primary)
}

func (b *DynamicBrush) occupied(l *grid.Layer, x, y int) bool {
	return l.ContainsFunc(x, y, b.IsMember)
}
