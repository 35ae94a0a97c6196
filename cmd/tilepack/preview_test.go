package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/tileforge/autotile"
	"github.com/milk9111/tileforge/tilepool"
)

func TestPreview_Write(t *testing.T) {
	pool, err := tilepool.New("tileset", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	var tiles []tilepool.Tile
	for i := 0; i < 16; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		img.SetRGBA(0, 0, color.RGBA{R: uint8(i * 10), A: 0xff})
		tl, err := pool.Add(img)
		if err != nil {
			t.Fatal(err)
		}
		tiles = append(tiles, tl)
	}

	p := newPreview(pool, tiles, autotile.Basic())
	path := filepath.Join(t.TempDir(), "preview.png")
	if err := p.write(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := image.Rect(0, 0, 2*len(sampleShape[0]), 2*len(sampleShape))
	if img.Bounds() != want {
		t.Errorf("preview bounds %v, want %v", img.Bounds(), want)
	}

	// Switching to a larger class leaves the extra slots empty.
	p.setClass(autotile.Extended())
	if got := p.brush.Slot(20); !got.IsNil() {
		t.Errorf("slot 20 = %v, want empty", got)
	}
	if got := p.brush.Slot(15); got != tiles[15].ID {
		t.Errorf("slot 15 not carried over")
	}
}
