// Package grid stores layers of tile stacks addressed by absolute cell
// coordinates.
package grid

import (
	"fmt"
	"image"
	"iter"

	"github.com/milk9111/tileforge/tile"
)

// Layer is a rectangle of cells, each holding an optional Stack. Cells are
// addressed by absolute coordinates in [origin, origin+size). Y grows
// downwards, so the cell north of (x, y) is (x, y-1).
type Layer struct {
	name   string
	tileW  int
	tileH  int
	bounds image.Rectangle
	cells  []*Stack
	subs   subscribers
}

// NewLayer creates an empty w x h layer whose first cell is origin.
func NewLayer(name string, tileW, tileH int, origin tile.Coord, w, h int) (*Layer, error) {
	if tileW <= 0 || tileH <= 0 {
		return nil, fmt.Errorf("grid: layer %q tile size %dx%d: %w", name, tileW, tileH, ErrInvalidSize)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("grid: layer %q size %dx%d: %w", name, w, h, ErrInvalidSize)
	}
	return &Layer{
		name:   name,
		tileW:  tileW,
		tileH:  tileH,
		bounds: image.Rect(origin.X, origin.Y, origin.X+w, origin.Y+h),
		cells:  make([]*Stack, w*h),
	}, nil
}

func (l *Layer) Name() string { return l.name }

// TileSize returns the pixel size of one cell.
func (l *Layer) TileSize() (w, h int) { return l.tileW, l.tileH }

// Origin returns the first addressable cell.
func (l *Layer) Origin() tile.Coord { return tile.C(l.bounds.Min.X, l.bounds.Min.Y) }

// Width returns the width in cells.
func (l *Layer) Width() int { return l.bounds.Dx() }

// Height returns the height in cells.
func (l *Layer) Height() int { return l.bounds.Dy() }

// Bounds returns the addressable cells as a half-open rectangle.
func (l *Layer) Bounds() image.Rectangle { return l.bounds }

// InBounds reports whether (x, y) is addressable.
func (l *Layer) InBounds(x, y int) bool {
	return image.Pt(x, y).In(l.bounds)
}

// Subscribe registers fn for modification events, delivered after each
// change is applied. The returned func unsubscribes.
func (l *Layer) Subscribe(fn func(Event)) (unsubscribe func()) {
	return l.subs.add(fn)
}

// Get returns a copy of the stack at (x, y), or nil for an empty cell.
func (l *Layer) Get(x, y int) (*Stack, error) {
	i, err := l.index(x, y)
	if err != nil {
		return nil, err
	}
	return l.cells[i].Clone(), nil
}

// ContainsFunc reports whether any tile at (x, y) satisfies fn. Out of range
// cells report false.
func (l *Layer) ContainsFunc(x, y int, fn func(tile.ID) bool) bool {
	if !l.InBounds(x, y) {
		return false
	}
	return l.cells[l.offset(x, y)].ContainsFunc(fn)
}

// Set replaces the stack at (x, y). A nil or empty stack clears the cell.
func (l *Layer) Set(x, y int, s *Stack) error {
	i, err := l.index(x, y)
	if err != nil {
		return err
	}
	if s.Len() == 0 {
		s = nil
	}
	if l.cells[i].Equal(s) {
		return nil
	}
	l.cells[i] = s.Clone()
	l.changed(x, y)
	return nil
}

// AddTile puts id on top of the stack at (x, y), moving it there if it is
// already in the stack.
func (l *Layer) AddTile(x, y int, id tile.ID) error {
	i, err := l.index(x, y)
	if err != nil {
		return err
	}
	if l.cells[i] == nil {
		l.cells[i] = &Stack{}
	}
	if top, ok := l.cells[i].Top(); ok && top == id {
		return nil
	}
	l.cells[i].Add(id)
	l.changed(x, y)
	return nil
}

// RemoveTile removes id from the stack at (x, y) and reports whether it was
// there.
func (l *Layer) RemoveTile(x, y int, id tile.ID) (bool, error) {
	return l.RemoveTileFunc(x, y, func(o tile.ID) bool { return o == id })
}

// RemoveTileFunc removes every tile at (x, y) for which fn returns true.
func (l *Layer) RemoveTileFunc(x, y int, fn func(tile.ID) bool) (bool, error) {
	i, err := l.index(x, y)
	if err != nil {
		return false, err
	}
	if l.cells[i].RemoveFunc(fn) == 0 {
		return false, nil
	}
	if l.cells[i].Len() == 0 {
		l.cells[i] = nil
	}
	l.changed(x, y)
	return true, nil
}

// ClearTile empties the cell at (x, y).
func (l *Layer) ClearTile(x, y int) error {
	i, err := l.index(x, y)
	if err != nil {
		return err
	}
	if l.cells[i] == nil {
		return nil
	}
	l.cells[i] = nil
	l.changed(x, y)
	return nil
}

// Occupied returns the number of non-empty cells.
func (l *Layer) Occupied() int {
	n := 0
	for _, s := range l.cells {
		if s != nil {
			n++
		}
	}
	return n
}

// Resize moves the layer to a new origin and size. Cells inside both the old
// and new bounds keep their stacks; the rest of the old cells are dropped.
func (l *Layer) Resize(ox, oy, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("grid: resize layer %q to %dx%d: %w", l.name, w, h, ErrInvalidSize)
	}
	nb := image.Rect(ox, oy, ox+w, oy+h)
	cells := make([]*Stack, w*h)
	keep := l.bounds.Intersect(nb)
	for y := keep.Min.Y; y < keep.Max.Y; y++ {
		for x := keep.Min.X; x < keep.Max.X; x++ {
			cells[(y-oy)*w+(x-ox)] = l.cells[l.offset(x, y)]
		}
	}
	l.bounds = nb
	l.cells = cells
	l.subs.emit(Event{Kind: LayerResized, Bounds: nb})
	return nil
}

// TilesAt yields every tile in region clipped to the layer, cells in
// row-major order and each stack bottom to top.
func (l *Layer) TilesAt(region image.Rectangle) iter.Seq2[tile.Coord, tile.ID] {
	return func(yield func(tile.Coord, tile.ID) bool) {
		r := region.Intersect(l.bounds)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				s := l.cells[l.offset(x, y)]
				if s == nil {
					continue
				}
				for _, id := range s.ids {
					if !yield(tile.C(x, y), id) {
						return
					}
				}
			}
		}
	}
}

// Tiles is TilesAt over the whole layer.
func (l *Layer) Tiles() iter.Seq2[tile.Coord, tile.ID] {
	return l.TilesAt(l.bounds)
}

func (l *Layer) index(x, y int) (int, error) {
	if !l.InBounds(x, y) {
		return 0, &OutOfRangeError{X: x, Y: y, Bounds: l.bounds}
	}
	return l.offset(x, y), nil
}

func (l *Layer) offset(x, y int) int {
	return (y-l.bounds.Min.Y)*l.bounds.Dx() + (x - l.bounds.Min.X)
}

func (l *Layer) changed(x, y int) {
	l.subs.emit(Event{Kind: CellChanged, Cell: tile.C(x, y)})
}
