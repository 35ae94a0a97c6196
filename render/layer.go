package render

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/tileforge/grid"
	"github.com/milk9111/tileforge/tile"
	xdraw "golang.org/x/image/draw"
)

// TileSource supplies tile pixels. *tilepool.Pool implements it.
type TileSource interface {
	Pixels(id tile.ID) (*image.RGBA, error)
}

// Compose draws every stack in l bottom to top into a new image, one tile
// per cell with the layer origin at (0, 0). Tiles the sources do not know
// are skipped.
func Compose(l *grid.Layer, sources ...TileSource) *image.RGBA {
	tw, th := l.TileSize()
	o := l.Origin()
	dst := image.NewRGBA(image.Rect(0, 0, l.Width()*tw, l.Height()*th))
	for c, id := range l.Tiles() {
		pix := lookupPixels(id, sources)
		if pix == nil {
			continue
		}
		at := image.Pt((c.X-o.X)*tw, (c.Y-o.Y)*th)
		xdraw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(pix.Bounds().Size())}, pix, image.Point{}, xdraw.Over)
	}
	return dst
}

func lookupPixels(id tile.ID, sources []TileSource) *image.RGBA {
	for _, s := range sources {
		if pix, err := s.Pixels(id); err == nil {
			return pix
		}
	}
	return nil
}

// DrawLayer draws l onto dst using the cache's textures. op is applied
// before each tile's own translation; it may be nil.
func DrawLayer(dst *ebiten.Image, l *grid.Layer, c *TextureCache, op *ebiten.DrawImageOptions) {
	tw, th := l.TileSize()
	o := l.Origin()
	for cell, id := range l.Tiles() {
		img := c.TileImage(id)
		if img == nil {
			continue
		}
		tileOp := &ebiten.DrawImageOptions{}
		tileOp.GeoM.Translate(float64((cell.X-o.X)*tw), float64((cell.Y-o.Y)*th))
		if op != nil {
			tileOp.GeoM.Concat(op.GeoM)
			tileOp.ColorScale = op.ColorScale
			tileOp.Filter = op.Filter
		}
		dst.DrawImage(img, tileOp)
	}
}
