// Package collision exports grid layers as static chipmunk shapes.
package collision

import (
	"image"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tileforge/grid"
	"github.com/milk9111/tileforge/internal/logging"
	"github.com/milk9111/tileforge/tile"
)

const (
	CollisionTypeSolid cp.CollisionType = iota + 1
	CollisionTypeHazard
	CollisionTypeBounds
)

// Kind classifies a tile for collision.
type Kind int

const (
	None Kind = iota
	Solid
	// Hazard tiles become individual sensor triangles instead of merged boxes.
	Hazard
)

// Classifier reports the collision kind of a tile.
type Classifier func(tile.ID) Kind

// SolidSet classifies every tile for which solid returns true as Solid.
func SolidSet(solid func(tile.ID) bool) Classifier {
	return func(id tile.ID) Kind {
		if solid(id) {
			return Solid
		}
		return None
	}
}

// World is the static collision geometry of one layer. Shapes are in pixels
// with the layer origin at (0, 0) and y growing downwards.
type World struct {
	space   *cp.Space
	origin  tile.Coord
	tileW   int
	tileH   int
	boxes   []image.Rectangle
	hazards []tile.Coord
	shapes  []*cp.Shape
}

// Build merges the layer's solid cells into boxes.
func Build(l *grid.Layer, solid func(tile.ID) bool) *World {
	return BuildClassified(l, SolidSet(solid))
}

// BuildClassified builds a world using a Classifier. A cell takes the
// strongest kind found in its stack, Hazard over Solid.
func BuildClassified(l *grid.Layer, classify Classifier) *World {
	tw, th := l.TileSize()
	w := &World{
		space:  cp.NewSpace(),
		origin: l.Origin(),
		tileW:  tw,
		tileH:  th,
	}

	b := l.Bounds()
	width, height := b.Dx(), b.Dy()
	kinds := make([]Kind, width*height)
	for c, id := range l.Tiles() {
		i := (c.Y-b.Min.Y)*width + (c.X - b.Min.X)
		kinds[i] = max(kinds[i], classify(id))
	}

	// Greedily expand each unprocessed solid cell into the widest run, then
	// grow that run downwards while every cell below it is solid too.
	processed := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if processed[idx] {
				continue
			}
			switch kinds[idx] {
			case None:
				processed[idx] = true
				continue
			case Hazard:
				w.addHazard(x, y)
				processed[idx] = true
				continue
			}

			rw := 1
			for x+rw < width {
				idx2 := y*width + (x + rw)
				if processed[idx2] || kinds[idx2] != Solid {
					break
				}
				rw++
			}

			rh := 1
		heightLoop:
			for y+rh < height {
				for xi := x; xi < x+rw; xi++ {
					idx2 := (y+rh)*width + xi
					if processed[idx2] || kinds[idx2] != Solid {
						break heightLoop
					}
				}
				rh++
			}

			w.addBox(x, y, rw, rh)
			for yy := y; yy < y+rh; yy++ {
				for xx := x; xx < x+rw; xx++ {
					processed[yy*width+xx] = true
				}
			}
		}
	}

	logging.Logger().Debug("collision built",
		"layer", l.Name(), "boxes", len(w.boxes), "hazards", len(w.hazards))
	return w
}

// AddBounds encloses the layer's pixel area with segments of the given
// thickness.
func (w *World) AddBounds(width, height int, thickness float64) {
	pw := float64(width * w.tileW)
	ph := float64(height * w.tileH)
	segs := []struct{ a, b cp.Vector }{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: pw, Y: 0}},   // top
		{a: cp.Vector{X: 0, Y: ph}, b: cp.Vector{X: pw, Y: ph}}, // bottom
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: ph}},   // left
		{a: cp.Vector{X: pw, Y: 0}, b: cp.Vector{X: pw, Y: ph}}, // right
	}
	for _, seg := range segs {
		shape := cp.NewSegment(w.space.StaticBody, seg.a, seg.b, thickness)
		shape.SetFriction(0.8)
		shape.SetCollisionType(CollisionTypeBounds)
		w.space.AddShape(shape)
		w.shapes = append(w.shapes, shape)
	}
}

// Space returns the chipmunk space holding the static shapes.
func (w *World) Space() *cp.Space { return w.space }

// Shapes returns every shape added to the space.
func (w *World) Shapes() []*cp.Shape { return w.shapes }

// Boxes returns the merged solid rectangles in absolute cell coordinates.
func (w *World) Boxes() []image.Rectangle { return w.boxes }

// Hazards returns the hazard cells in absolute coordinates.
func (w *World) Hazards() []tile.Coord { return w.hazards }

// SolidAt reports whether the pixel (px, py), relative to the layer origin,
// lies inside a merged solid box.
func (w *World) SolidAt(px, py float64) bool {
	for _, r := range w.boxes {
		bb := w.pixelBB(r.Min.X-w.origin.X, r.Min.Y-w.origin.Y, r.Dx(), r.Dy())
		if px >= bb.L && px < bb.R && py >= bb.B && py < bb.T {
			return true
		}
	}
	return false
}

func (w *World) pixelBB(x, y, cw, ch int) cp.BB {
	x0 := float64(x * w.tileW)
	y0 := float64(y * w.tileH)
	return cp.BB{L: x0, B: y0, R: x0 + float64(cw*w.tileW), T: y0 + float64(ch*w.tileH)}
}

func (w *World) addBox(x, y, cw, ch int) {
	shape := cp.NewBox2(w.space.StaticBody, w.pixelBB(x, y, cw, ch), 0)
	shape.SetFriction(0.8)
	shape.SetCollisionType(CollisionTypeSolid)
	w.space.AddShape(shape)
	w.shapes = append(w.shapes, shape)

	ax, ay := x+w.origin.X, y+w.origin.Y
	w.boxes = append(w.boxes, image.Rect(ax, ay, ax+cw, ay+ch))
}

func (w *World) addHazard(x, y int) {
	x0 := float64(x * w.tileW)
	y0 := float64(y * w.tileH)
	tw, th := float64(w.tileW), float64(w.tileH)
	verts := []cp.Vector{
		{X: x0, Y: y0 + th},
		{X: x0 + tw, Y: y0 + th},
		{X: x0 + tw/2.0, Y: y0},
	}
	shape := cp.NewPolyShapeRaw(w.space.StaticBody, 3, verts, 0)
	shape.SetSensor(true)
	shape.SetCollisionType(CollisionTypeHazard)
	w.space.AddShape(shape)
	w.shapes = append(w.shapes, shape)
	w.hazards = append(w.hazards, tile.C(x+w.origin.X, y+w.origin.Y))
}
