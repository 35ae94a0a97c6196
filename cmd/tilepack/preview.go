package main

import (
	"image"
	"image/png"
	"log"
	"os"

	"github.com/milk9111/tileforge/autotile"
	"github.com/milk9111/tileforge/collision"
	"github.com/milk9111/tileforge/grid"
	"github.com/milk9111/tileforge/render"
	"github.com/milk9111/tileforge/tile"
	"github.com/milk9111/tileforge/tilepool"
)

// sampleShape is painted with the class brush; '#' cells are members.
var sampleShape = []string{
	"            ",
	" ######     ",
	" ########   ",
	" ##  ####   ",
	" ##  ###### ",
	" ########## ",
	"     #   ## ",
	"            ",
}

type preview struct {
	pool  *tilepool.Pool
	tiles []tilepool.Tile
	brush *autotile.DynamicBrush
}

func newPreview(pool *tilepool.Pool, tiles []tilepool.Tile, class *autotile.Class) *preview {
	p := &preview{pool: pool, tiles: tiles, brush: autotile.NewDynamicBrush("sample", class)}
	p.fillTemplate()
	return p
}

func (p *preview) setClass(c *autotile.Class) {
	p.brush.SetClass(c)
	p.fillTemplate()
}

// fillTemplate assigns imported tiles to template slots in import order.
func (p *preview) fillTemplate() {
	for i := 0; i < p.brush.Class().Slots; i++ {
		id := tile.Nil
		if i < len(p.tiles) {
			id = p.tiles[i].ID
		}
		_ = p.brush.SetSlot(i, id)
	}
}

func (p *preview) write(path string) error {
	tw, th := p.pool.TileSize()
	layer, err := grid.NewLayer("sample", tw, th, tile.C(0, 0), len(sampleShape[0]), len(sampleShape))
	if err != nil {
		return err
	}
	for y, row := range sampleShape {
		for x, ch := range row {
			if ch == '#' {
				p.brush.Apply(layer, x, y)
			}
		}
	}

	world := collision.Build(layer, p.brush.IsMember)
	log.Printf("Sample layer: %d cells, %d collision boxes, class %s",
		layer.Occupied(), len(world.Boxes()), p.brush.Class().Name)

	return writePNG(path, render.Compose(layer, p.pool))
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
