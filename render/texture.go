// Package render mirrors tile pool atlases as GPU textures and composes
// layers into images.
package render

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/tileforge/internal/logging"
	"github.com/milk9111/tileforge/tile"
	"github.com/milk9111/tileforge/tilepool"
)

// UploadFunc turns an atlas buffer into a texture.
type UploadFunc func(*image.RGBA) *ebiten.Image

type texture struct {
	pool    *tilepool.Pool
	tex     *ebiten.Image
	dirty   bool
	uploads int
	detach  func()
}

// TextureCache keeps one texture per tracked pool and re-uploads it lazily
// after the pool's atlas reports an invalidating change.
type TextureCache struct {
	upload   UploadFunc
	textures map[string]*texture
	order    []string
}

// NewTextureCache uploads with ebiten.NewImageFromImage.
func NewTextureCache() *TextureCache {
	return NewTextureCacheWith(func(img *image.RGBA) *ebiten.Image {
		return ebiten.NewImageFromImage(img)
	})
}

// NewTextureCacheWith uses upload to create textures.
func NewTextureCacheWith(upload UploadFunc) *TextureCache {
	return &TextureCache{upload: upload, textures: make(map[string]*texture)}
}

// Track starts mirroring p under its name, replacing any pool tracked under
// the same name.
func (c *TextureCache) Track(p *tilepool.Pool) {
	c.Untrack(p.Name())
	t := &texture{pool: p, dirty: true}
	t.detach = p.Subscribe(func(e tilepool.Event) {
		if e.Kind == tilepool.EventInvalidated {
			t.dirty = true
		}
	})
	c.textures[p.Name()] = t
	c.order = append(c.order, p.Name())
}

// Untrack stops mirroring the named pool and releases its texture.
func (c *TextureCache) Untrack(name string) {
	t, ok := c.textures[name]
	if !ok {
		return
	}
	t.detach()
	if t.tex != nil {
		t.tex.Deallocate()
	}
	delete(c.textures, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Texture returns the named pool's texture, uploading it first if the atlas
// changed since the last call. It returns nil for an untracked name.
func (c *TextureCache) Texture(name string) *ebiten.Image {
	t, ok := c.textures[name]
	if !ok {
		return nil
	}
	if t.dirty {
		if t.tex != nil {
			t.tex.Deallocate()
		}
		t.tex = c.upload(t.pool.Atlas().Image())
		t.dirty = false
		t.uploads++
		logging.Logger().Debug("texture uploaded", "pool", name, "uploads", t.uploads)
	}
	return t.tex
}

// Dirty reports whether the named texture will be re-uploaded on next use.
func (c *TextureCache) Dirty(name string) bool {
	t, ok := c.textures[name]
	return ok && t.dirty
}

// Uploads returns how many times the named texture has been uploaded.
func (c *TextureCache) Uploads(name string) int {
	if t, ok := c.textures[name]; ok {
		return t.uploads
	}
	return 0
}

// Lookup finds the tracked pool owning id and the tile's atlas rectangle.
func (c *TextureCache) Lookup(id tile.ID) (name string, rect image.Rectangle, ok bool) {
	for _, n := range c.order {
		if r, ok := c.textures[n].pool.SlotRect(id); ok {
			return n, r, true
		}
	}
	return "", image.Rectangle{}, false
}

// TileImage returns the tile's region of its pool texture.
func (c *TextureCache) TileImage(id tile.ID) *ebiten.Image {
	name, r, ok := c.Lookup(id)
	if !ok {
		return nil
	}
	tex := c.Texture(name)
	if tex == nil {
		return nil
	}
	sub, _ := tex.SubImage(r).(*ebiten.Image)
	return sub
}
