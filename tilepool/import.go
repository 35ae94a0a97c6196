package tilepool

import (
	"fmt"
	"image"

	"github.com/milk9111/tileforge/tile"
)

// ImportPolicy selects which sliced candidates ImportMerge keeps.
type ImportPolicy int

const (
	// ImportAll keeps every candidate.
	ImportAll ImportPolicy = iota
	// SourceUnique keeps the first occurrence of each distinct tile in the source.
	SourceUnique
	// SetUnique additionally skips tiles whose pixels already exist in the pool.
	SetUnique
)

func (p ImportPolicy) String() string {
	switch p {
	case ImportAll:
		return "all"
	case SourceUnique:
		return "source_unique"
	case SetUnique:
		return "set_unique"
	default:
		return "unknown"
	}
}

// ParseImportPolicy parses the names produced by ImportPolicy.String.
func ParseImportPolicy(s string) (ImportPolicy, error) {
	for _, p := range []ImportPolicy{ImportAll, SourceUnique, SetUnique} {
		if p.String() == s {
			return p, nil
		}
	}
	return ImportAll, fmt.Errorf("tilepool: import policy %q: %w", s, ErrInvalidOptions)
}

// ImportOptions describes how a source image is sliced into tiles. Margins
// apply to both edges; spacing separates adjacent tiles.
type ImportOptions struct {
	TileWidth  int
	TileHeight int
	SpacingX   int
	SpacingY   int
	MarginX    int
	MarginY    int
	Policy     ImportPolicy
}

// Grid returns the number of tile columns and rows that fit in bounds.
func (o ImportOptions) Grid(bounds image.Rectangle) (cols, rows int) {
	cols = (bounds.Dx() - 2*o.MarginX + o.SpacingX) / (o.TileWidth + o.SpacingX)
	rows = (bounds.Dy() - 2*o.MarginY + o.SpacingY) / (o.TileHeight + o.SpacingY)
	return max(cols, 0), max(rows, 0)
}

func (o ImportOptions) validate() error {
	if o.SpacingX < 0 || o.SpacingY < 0 || o.MarginX < 0 || o.MarginY < 0 {
		return fmt.Errorf("tilepool: spacing %dx%d margin %dx%d: %w",
			o.SpacingX, o.SpacingY, o.MarginX, o.MarginY, ErrInvalidOptions)
	}
	switch o.Policy {
	case ImportAll, SourceUnique, SetUnique:
	default:
		return fmt.Errorf("tilepool: policy %d: %w", o.Policy, ErrInvalidOptions)
	}
	return nil
}

// ImportMerge slices src into candidate tiles in row-major order and adds
// the ones selected by opts.Policy. The returned tiles are in first-seen
// order. The option tile size must equal the pool's.
//
// Candidates are compared after conversion to premultiplied RGBA, the form
// the atlas stores. Sources whose raw pixels differ only where alpha is zero
// therefore compare equal.
func (p *Pool) ImportMerge(src image.Image, opts ImportOptions) ([]Tile, error) {
	if opts.TileWidth != p.tileW || opts.TileHeight != p.tileH {
		return nil, fmt.Errorf("tilepool: import %dx%d tiles into %dx%d pool %q: %w",
			opts.TileWidth, opts.TileHeight, p.tileW, p.tileH, p.name, ErrDimensionMismatch)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	b := src.Bounds()
	cols, rows := opts.Grid(b)
	seen := make(map[digest]bool)
	var added []Tile
	skipped := 0

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := b.Min.X + opts.MarginX + c*(opts.TileWidth+opts.SpacingX)
			y := b.Min.Y + opts.MarginY + r*(opts.TileHeight+opts.SpacingY)
			pix := toRGBA(subImage(src, image.Rect(x, y, x+opts.TileWidth, y+opts.TileHeight)))
			h := hashPixels(pix)

			if opts.Policy != ImportAll && seen[h] {
				skipped++
				continue
			}
			seen[h] = true
			if opts.Policy == SetUnique && len(p.byHash[h]) > 0 {
				skipped++
				continue
			}

			t := Tile{ID: tile.NewID(), Pool: p.resID, Kind: KindPhysical}
			if err := p.insert(t, pix); err != nil {
				return added, err
			}
			added = append(added, t)
		}
	}

	p.log.Debug("tiles imported",
		"pool", p.name, "policy", opts.Policy.String(), "candidates", cols*rows,
		"added", len(added), "skipped", skipped)
	return added, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// subImage returns the r portion of img, sharing pixels when possible.
func subImage(img image.Image, r image.Rectangle) image.Image {
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}
	return &croppedImage{Image: img, r: r}
}

type croppedImage struct {
	image.Image
	r image.Rectangle
}

func (c *croppedImage) Bounds() image.Rectangle { return c.r }
