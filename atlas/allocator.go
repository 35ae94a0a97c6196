// Package atlas packs fixed-size tile images into one shared pixel buffer.
//
// An Allocator owns a near-square RGBA buffer divided into a grid of slots,
// each exactly one tile in size. The buffer grows by doubling its smaller
// dimension when no slot is free and shrinks by halving its larger dimension
// once at least half of the slots are free. Shrinking re-packs the surviving
// slots, so slot coordinates are only stable between EventShrunk
// notifications.
package atlas

import (
	"cmp"
	"fmt"
	"image"
	"slices"

	"github.com/milk9111/tileforge/internal/logging"
	"github.com/milk9111/tileforge/tile"
	"golang.org/x/image/draw"
)

const (
	// MinSlotsPerSide is the bootstrap buffer size in slots per side.
	MinSlotsPerSide = 4

	// MinCapacity is the smallest slot count the buffer ever shrinks to.
	MinCapacity = MinSlotsPerSide * MinSlotsPerSide

	// MaxDimension is the largest buffer width or height in pixels.
	MaxDimension = 16384
)

// Allocator manages the slots of one pixel buffer. All slots share a single
// tile size; use one Allocator per distinct tile size.
type Allocator struct {
	tileW int
	tileH int
	cols  int
	rows  int
	buf   *image.RGBA

	// free is a stack; the next slot handed out is the last element.
	free []tile.Coord

	// used maps occupied slots to their allocation sequence number, which
	// fixes the re-pack order on shrink.
	used map[tile.Coord]uint64
	seq  uint64

	subs subscribers
}

// New creates an allocator with a bootstrap buffer of 4x4 free slots.
func New(tileW, tileH int) (*Allocator, error) {
	if tileW <= 0 || tileH <= 0 {
		return nil, fmt.Errorf("atlas: tile size %dx%d: %w", tileW, tileH, ErrDimensionMismatch)
	}
	if tileW*MinSlotsPerSide > MaxDimension || tileH*MinSlotsPerSide > MaxDimension {
		return nil, fmt.Errorf("atlas: tile size %dx%d: %w", tileW, tileH, ErrAtlasExhausted)
	}
	a := &Allocator{
		tileW: tileW,
		tileH: tileH,
		cols:  MinSlotsPerSide,
		rows:  MinSlotsPerSide,
		used:  make(map[tile.Coord]uint64),
	}
	a.buf = image.NewRGBA(image.Rect(0, 0, a.cols*tileW, a.rows*tileH))
	a.pushFree(0, 0, a.cols, a.rows)
	return a, nil
}

// Allocate returns a free slot, growing the buffer first if none remain.
// The tile size must match the allocator's.
func (a *Allocator) Allocate(tileW, tileH int) (tile.Coord, error) {
	if tileW != a.tileW || tileH != a.tileH {
		return tile.Coord{}, fmt.Errorf("atlas: allocate %dx%d in %dx%d atlas: %w",
			tileW, tileH, a.tileW, a.tileH, ErrDimensionMismatch)
	}
	if len(a.free) == 0 {
		if err := a.grow(); err != nil {
			return tile.Coord{}, err
		}
	}
	slot := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	a.seq++
	a.used[slot] = a.seq
	return slot, nil
}

// Free clears the slot to transparent and releases it. The buffer may shrink
// as a side effect, relocating other slots.
func (a *Allocator) Free(slot tile.Coord) error {
	if _, ok := a.used[slot]; !ok {
		return fmt.Errorf("atlas: free %v: %w", slot, ErrSlotNotAllocated)
	}
	draw.Draw(a.buf, a.SlotRect(slot), image.Transparent, image.Point{}, draw.Src)
	delete(a.used, slot)
	a.free = append(a.free, slot)
	a.subs.emit(Event{Kind: EventCleared, Slot: slot, Cols: a.cols, Rows: a.rows})
	a.shrinkCheck()
	return nil
}

// Write copies img into the slot. img must be exactly one tile in size.
func (a *Allocator) Write(slot tile.Coord, img image.Image) error {
	if _, ok := a.used[slot]; !ok {
		return fmt.Errorf("atlas: write %v: %w", slot, ErrSlotNotAllocated)
	}
	b := img.Bounds()
	if b.Dx() != a.tileW || b.Dy() != a.tileH {
		return fmt.Errorf("atlas: write %dx%d into %dx%d slot: %w",
			b.Dx(), b.Dy(), a.tileW, a.tileH, ErrDimensionMismatch)
	}
	draw.Draw(a.buf, a.SlotRect(slot), img, b.Min, draw.Src)
	a.subs.emit(Event{Kind: EventWritten, Slot: slot, Cols: a.cols, Rows: a.rows})
	return nil
}

// Pixels returns a copy of the slot's pixels with bounds at the origin.
func (a *Allocator) Pixels(slot tile.Coord) (*image.RGBA, error) {
	if _, ok := a.used[slot]; !ok {
		return nil, fmt.Errorf("atlas: read %v: %w", slot, ErrSlotNotAllocated)
	}
	out := image.NewRGBA(image.Rect(0, 0, a.tileW, a.tileH))
	draw.Copy(out, image.Point{}, a.buf, a.SlotRect(slot), draw.Src, nil)
	return out, nil
}

// Subscribe registers fn for every allocator event and returns a function
// that removes it.
func (a *Allocator) Subscribe(fn func(Event)) func() {
	return a.subs.add(fn)
}

// Image returns the live pixel buffer. The pointer changes on grow and
// shrink; callers must not write to it.
func (a *Allocator) Image() *image.RGBA {
	return a.buf
}

// SlotRect returns the pixel rectangle of slot in the buffer.
func (a *Allocator) SlotRect(slot tile.Coord) image.Rectangle {
	x, y := slot.X*a.tileW, slot.Y*a.tileH
	return image.Rect(x, y, x+a.tileW, y+a.tileH)
}

// TileSize returns the tile width and height in pixels.
func (a *Allocator) TileSize() (w, h int) {
	return a.tileW, a.tileH
}

// Cols returns the buffer width in slots.
func (a *Allocator) Cols() int { return a.cols }

// Rows returns the buffer height in slots.
func (a *Allocator) Rows() int { return a.rows }

// Capacity returns the buffer area in slots.
func (a *Allocator) Capacity() int { return a.cols * a.rows }

// Occupied returns the number of allocated slots.
func (a *Allocator) Occupied() int { return len(a.used) }

// FreeSlots returns the number of free slots.
func (a *Allocator) FreeSlots() int { return len(a.free) }

// IsAllocated reports whether slot is currently occupied.
func (a *Allocator) IsAllocated(slot tile.Coord) bool {
	_, ok := a.used[slot]
	return ok
}

// OccupiedSlots returns the occupied slots in allocation order.
func (a *Allocator) OccupiedSlots() []tile.Coord {
	slots := make([]tile.Coord, 0, len(a.used))
	for slot := range a.used {
		slots = append(slots, slot)
	}
	slices.SortFunc(slots, func(x, y tile.Coord) int {
		return cmp.Compare(a.used[x], a.used[y])
	})
	return slots
}

// grow doubles the smaller pixel dimension, width when square.
func (a *Allocator) grow() error {
	cols, rows := a.cols, a.rows
	if cols*a.tileW <= rows*a.tileH {
		cols *= 2
	} else {
		rows *= 2
	}
	if cols*a.tileW > MaxDimension || rows*a.tileH > MaxDimension {
		return fmt.Errorf("atlas: grow to %dx%d slots: %w", cols, rows, ErrAtlasExhausted)
	}

	buf := image.NewRGBA(image.Rect(0, 0, cols*a.tileW, rows*a.tileH))
	draw.Copy(buf, image.Point{}, a.buf, a.buf.Bounds(), draw.Src, nil)

	oldCols, oldRows := a.cols, a.rows
	a.buf = buf
	a.cols, a.rows = cols, rows

	// Only one of these ranges is non-empty.
	a.pushFree(0, oldRows, cols, rows)
	a.pushFree(oldCols, 0, cols, oldRows)

	logging.Logger().Debug("atlas grown",
		"tile_w", a.tileW, "tile_h", a.tileH, "cols", cols, "rows", rows)
	a.subs.emit(Event{Kind: EventGrown, Cols: cols, Rows: rows})
	return nil
}

// shrinkCheck halves the larger pixel dimension, height when square, once at
// least half the slots are free and the buffer is above minimum capacity.
func (a *Allocator) shrinkCheck() {
	free, occupied := len(a.free), len(a.used)
	if free < occupied || free+occupied <= MinCapacity {
		return
	}
	cols, rows := a.cols, a.rows
	if cols*a.tileW > rows*a.tileH && cols > 1 {
		cols /= 2
	} else if rows > 1 {
		rows /= 2
	} else {
		cols /= 2
	}
	if cols*rows < occupied || cols < 1 {
		return
	}

	order := a.OccupiedSlots()
	buf := image.NewRGBA(image.Rect(0, 0, cols*a.tileW, rows*a.tileH))
	used := make(map[tile.Coord]uint64, len(order))
	moves := make(map[tile.Coord]tile.Coord, len(order))

	oldUsed := a.used
	a.cols, a.rows = cols, rows
	for i, old := range order {
		slot := tile.Coord{X: i % cols, Y: i / cols}
		src := image.Rect(old.X*a.tileW, old.Y*a.tileH, (old.X+1)*a.tileW, (old.Y+1)*a.tileH)
		draw.Copy(buf, a.SlotRect(slot).Min, a.buf, src, draw.Src, nil)
		used[slot] = oldUsed[old]
		moves[old] = slot
	}
	a.buf = buf
	a.used = used
	a.free = a.free[:0]
	for i := cols*rows - 1; i >= len(order); i-- {
		a.free = append(a.free, tile.Coord{X: i % cols, Y: i / cols})
	}

	logging.Logger().Debug("atlas shrunk",
		"tile_w", a.tileW, "tile_h", a.tileH, "cols", cols, "rows", rows, "occupied", len(order))
	a.subs.emit(Event{Kind: EventShrunk, Moves: moves, Cols: cols, Rows: rows})
}

// pushFree adds the slots of [x0,x1)x[y0,y1) so that they are handed out in
// row-major order.
func (a *Allocator) pushFree(x0, y0, x1, y1 int) {
	for y := y1 - 1; y >= y0; y-- {
		for x := x1 - 1; x >= x0; x-- {
			a.free = append(a.free, tile.Coord{X: x, Y: y})
		}
	}
}
