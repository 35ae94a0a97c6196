package tilepool

import (
	"image"

	"github.com/milk9111/tileforge/atlas"
	"github.com/milk9111/tileforge/tile"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Kind distinguishes tiles that own their pixels from tiles derived from
// another tile.
type Kind int

const (
	// KindPhysical tiles hold pixels written by Add, Update or ImportMerge.
	KindPhysical Kind = iota
	// KindDependent tiles hold a Transform of their Source's pixels.
	KindDependent
)

func (k Kind) String() string {
	switch k {
	case KindPhysical:
		return "physical"
	case KindDependent:
		return "dependent"
	default:
		return "unknown"
	}
}

// Transform is a rotation or flip applied to a source tile.
type Transform int

const (
	TransformNone Transform = iota
	FlipH
	FlipV
	Rotate90
	Rotate180
	Rotate270
)

func (t Transform) String() string {
	switch t {
	case TransformNone:
		return "none"
	case FlipH:
		return "flip_h"
	case FlipV:
		return "flip_v"
	case Rotate90:
		return "rotate_90"
	case Rotate180:
		return "rotate_180"
	case Rotate270:
		return "rotate_270"
	default:
		return "unknown"
	}
}

// swapsAxes reports whether the transform exchanges width and height.
func (t Transform) swapsAxes() bool {
	return t == Rotate90 || t == Rotate270
}

// matrix maps source pixel space to destination pixel space for a w x h
// source. Rotations are clockwise.
func (t Transform) matrix(w, h int) f64.Aff3 {
	fw, fh := float64(w), float64(h)
	switch t {
	case FlipH:
		return f64.Aff3{-1, 0, fw, 0, 1, 0}
	case FlipV:
		return f64.Aff3{1, 0, 0, 0, -1, fh}
	case Rotate90:
		return f64.Aff3{0, -1, fh, 1, 0, 0}
	case Rotate180:
		return f64.Aff3{-1, 0, fw, 0, -1, fh}
	case Rotate270:
		return f64.Aff3{0, 1, 0, -1, 0, fw}
	default:
		return f64.Aff3{1, 0, 0, 0, 1, 0}
	}
}

// apply renders src through the transform into a new image at the origin.
func (t Transform) apply(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if t.swapsAxes() {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	if t == TransformNone {
		draw.Copy(dst, image.Point{}, src, b, draw.Src, nil)
		return dst
	}
	draw.NearestNeighbor.Transform(dst, t.matrix(w, h), src, b, draw.Src, nil)
	return dst
}

// Tile describes one tile of a pool. Slots are not part of the description
// because they move when the atlas shrinks; ask the pool for them. Pool is
// the ResourceID of the owning pool.
type Tile struct {
	ID        tile.ID
	Pool      atlas.ResourceID
	Kind      Kind
	Source    tile.ID
	Transform Transform
}

// toRGBA copies img into a fresh RGBA image with bounds at the origin.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(out, image.Point{}, img, b, draw.Src, nil)
	return out
}
