package tilepool

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sheet lays out tiles left to right, top to bottom with the given spacing
// and margin. Gaps are filled with an opaque colour no tile uses.
func sheet(tiles [][]*image.RGBA, tw, th, spacing, margin int) *image.RGBA {
	rows, cols := len(tiles), len(tiles[0])
	w := 2*margin + cols*tw + (cols-1)*spacing
	h := 2*margin + rows*th + (rows-1)*spacing
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 0xff, A: 0xff}), image.Point{}, draw.Src)
	for r, row := range tiles {
		for c, t := range row {
			x := margin + c*(tw+spacing)
			y := margin + r*(th+spacing)
			draw.Draw(img, image.Rect(x, y, x+tw, y+th), t, image.Point{}, draw.Src)
		}
	}
	return img
}

func TestImportOptions_Grid(t *testing.T) {
	cases := []struct {
		name       string
		w, h       int
		opts       ImportOptions
		cols, rows int
	}{
		{"exact", 64, 32, ImportOptions{TileWidth: 16, TileHeight: 16}, 4, 2},
		{"partial tiles dropped", 70, 40, ImportOptions{TileWidth: 16, TileHeight: 16}, 4, 2},
		{"spacing and margin", 2*2 + 4*8 + 3*1, 2*2 + 2*8 + 1, ImportOptions{TileWidth: 8, TileHeight: 8, SpacingX: 1, SpacingY: 1, MarginX: 2, MarginY: 2}, 4, 2},
		{"too small", 4, 4, ImportOptions{TileWidth: 8, TileHeight: 8, MarginX: 3, MarginY: 3}, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cols, rows := c.opts.Grid(image.Rect(0, 0, c.w, c.h))
			if cols != c.cols || rows != c.rows {
				t.Errorf("Grid = %dx%d, want %dx%d", cols, rows, c.cols, c.rows)
			}
		})
	}
}

func TestPool_ImportMerge(t *testing.T) {
	const ts = 8
	a, b, c, d := patterned(ts, ts, 1), patterned(ts, ts, 2), patterned(ts, ts, 3), patterned(ts, ts, 4)
	src := sheet([][]*image.RGBA{
		{a, b, a, c},
		{b, d, a, a},
	}, ts, ts, 1, 2)
	opts := ImportOptions{TileWidth: ts, TileHeight: ts, SpacingX: 1, SpacingY: 1, MarginX: 2, MarginY: 2}

	pixelsOf := func(t *testing.T, p *Pool, tiles []Tile) [][]byte {
		t.Helper()
		var out [][]byte
		for _, tl := range tiles {
			pix, err := p.Pixels(tl.ID)
			if err != nil {
				t.Fatalf("Pixels: %v", err)
			}
			out = append(out, pix.Pix)
		}
		return out
	}

	t.Run("all", func(t *testing.T) {
		p := mustPool(t, ts, ts)
		opts := opts
		opts.Policy = ImportAll
		got, err := p.ImportMerge(src, opts)
		if err != nil {
			t.Fatalf("ImportMerge: %v", err)
		}
		want := [][]byte{a.Pix, b.Pix, a.Pix, c.Pix, b.Pix, d.Pix, a.Pix, a.Pix}
		if diff := cmp.Diff(want, pixelsOf(t, p, got)); diff != "" {
			t.Errorf("imported pixels mismatch (-want +got):\n%s", diff)
		}
		checkOneToOne(t, p)
	})

	t.Run("source_unique", func(t *testing.T) {
		p := mustPool(t, ts, ts)
		opts := opts
		opts.Policy = SourceUnique
		got, err := p.ImportMerge(src, opts)
		if err != nil {
			t.Fatalf("ImportMerge: %v", err)
		}
		want := [][]byte{a.Pix, b.Pix, c.Pix, d.Pix}
		if diff := cmp.Diff(want, pixelsOf(t, p, got)); diff != "" {
			t.Errorf("imported pixels mismatch (-want +got):\n%s", diff)
		}

		// Source uniqueness ignores what the pool already holds.
		again, err := p.ImportMerge(src, opts)
		if err != nil {
			t.Fatalf("ImportMerge: %v", err)
		}
		if len(again) != 4 || p.Len() != 8 {
			t.Errorf("second import added %d tiles, pool has %d", len(again), p.Len())
		}
	})

	t.Run("set_unique", func(t *testing.T) {
		p := mustPool(t, ts, ts)
		if _, err := p.Add(c); err != nil {
			t.Fatalf("Add: %v", err)
		}
		opts := opts
		opts.Policy = SetUnique
		got, err := p.ImportMerge(src, opts)
		if err != nil {
			t.Fatalf("ImportMerge: %v", err)
		}
		want := [][]byte{a.Pix, b.Pix, d.Pix}
		if diff := cmp.Diff(want, pixelsOf(t, p, got)); diff != "" {
			t.Errorf("imported pixels mismatch (-want +got):\n%s", diff)
		}

		again, err := p.ImportMerge(src, opts)
		if err != nil {
			t.Fatalf("ImportMerge: %v", err)
		}
		if len(again) != 0 {
			t.Errorf("re-import added %d tiles, want 0", len(again))
		}
		if p.Len() != 4 {
			t.Errorf("pool has %d tiles, want 4", p.Len())
		}
		if !p.HasContent(d) || p.HasContent(patterned(ts, ts, 99)) {
			t.Error("HasContent disagrees with pool contents")
		}
	})
}

func TestPool_ImportMergeComparesStoredPixels(t *testing.T) {
	p := mustPool(t, 2, 2)
	src := image.NewNRGBA(image.Rect(0, 0, 6, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 0xff})   // transparent red
			src.SetNRGBA(x+2, y, color.NRGBA{G: 0xff}) // transparent green
			src.SetNRGBA(x+4, y, color.NRGBA{G: 0xff, A: 0x80})
		}
	}
	got, err := p.ImportMerge(src, ImportOptions{TileWidth: 2, TileHeight: 2, Policy: SourceUnique})
	if err != nil {
		t.Fatalf("ImportMerge: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("imported %d tiles, want 2", len(got))
	}
	pix, _ := p.Pixels(got[0].ID)
	if !bytes.Equal(pix.Pix, make([]byte, len(pix.Pix))) {
		t.Errorf("transparent tile stored as %v, want zeros", pix.Pix)
	}
}

func TestPool_ImportMergeErrors(t *testing.T) {
	p := mustPool(t, 8, 8)
	src := image.NewRGBA(image.Rect(0, 0, 32, 32))

	if _, err := p.ImportMerge(src, ImportOptions{TileWidth: 16, TileHeight: 16}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := p.ImportMerge(src, ImportOptions{TileWidth: 8, TileHeight: 8, SpacingX: -1}); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("expected ErrInvalidOptions, got %v", err)
	}
	if _, err := p.ImportMerge(src, ImportOptions{TileWidth: 8, TileHeight: 8, Policy: ImportPolicy(9)}); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("expected ErrInvalidOptions for bad policy, got %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("failed imports left %d tiles", p.Len())
	}
}

func TestPool_ImportMergeOffsetBounds(t *testing.T) {
	p := mustPool(t, 4, 4)
	full := sheet([][]*image.RGBA{{patterned(4, 4, 1), patterned(4, 4, 2)}}, 4, 4, 0, 0)
	// A sub-image keeps its parent's coordinates.
	src := full.SubImage(image.Rect(4, 0, 8, 4))
	got, err := p.ImportMerge(src, ImportOptions{TileWidth: 4, TileHeight: 4})
	if err != nil {
		t.Fatalf("ImportMerge: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("imported %d tiles, want 1", len(got))
	}
	pix, _ := p.Pixels(got[0].ID)
	if !bytes.Equal(pix.Pix, patterned(4, 4, 2).Pix) {
		t.Error("offset source imported the wrong region")
	}
}

func TestParseImportPolicy(t *testing.T) {
	for _, p := range []ImportPolicy{ImportAll, SourceUnique, SetUnique} {
		got, err := ParseImportPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseImportPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseImportPolicy("bogus"); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("expected ErrInvalidOptions, got %v", err)
	}
}
