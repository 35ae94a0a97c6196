// Package tilepool owns the tiles drawn from one tileset: their identities,
// their atlas slots and the content hashes used to deduplicate imports.
package tilepool

import (
	"crypto/sha256"
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/milk9111/tileforge/atlas"
	"github.com/milk9111/tileforge/internal/logging"
	"github.com/milk9111/tileforge/tile"
)

type digest [sha256.Size]byte

type entry struct {
	tile       Tile
	slot       tile.Coord
	hash       digest
	dependents []tile.ID
}

// Option configures a Pool.
type Option func(*Pool)

// WithStore registers the pool's atlas in store under the pool's resource id
// for the lifetime of the pool.
func WithStore(store *atlas.Store) Option {
	return func(p *Pool) {
		p.store = store
	}
}

// WithLogger overrides the shared logger for this pool.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		p.log = l
	}
}

// Pool is a set of same-sized tiles backed by one atlas allocator. Every tile
// has exactly one slot and every occupied slot belongs to exactly one tile.
type Pool struct {
	name  string
	tileW int
	tileH int
	resID atlas.ResourceID

	alloc   *atlas.Allocator
	store   *atlas.Store
	detach  func()
	entries map[tile.ID]*entry
	order   []tile.ID
	byHash  map[digest][]tile.ID
	subs    subscribers
	log     *slog.Logger
}

// New creates an empty pool of tileW x tileH tiles.
func New(name string, tileW, tileH int, opts ...Option) (*Pool, error) {
	alloc, err := atlas.New(tileW, tileH)
	if err != nil {
		return nil, fmt.Errorf("tilepool: new %q: %w", name, err)
	}
	p := &Pool{
		name:    name,
		tileW:   tileW,
		tileH:   tileH,
		resID:   uuid.New(),
		alloc:   alloc,
		entries: make(map[tile.ID]*entry),
		byHash:  make(map[digest][]tile.ID),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logging.Logger()
	}
	p.detach = alloc.Subscribe(p.onAtlasEvent)
	if p.store != nil {
		p.store.AddResource(p.resID, alloc)
	}
	return p, nil
}

// Close detaches the pool from its atlas and releases its store reference.
// The pool must not be used afterwards.
func (p *Pool) Close() {
	if p.detach != nil {
		p.detach()
		p.detach = nil
	}
	if p.store != nil {
		p.store.RemoveResource(p.resID)
		p.store = nil
	}
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// TileSize returns the tile width and height shared by every tile.
func (p *Pool) TileSize() (w, h int) { return p.tileW, p.tileH }

// ResourceID is the identity under which the pool's atlas is stored.
func (p *Pool) ResourceID() atlas.ResourceID { return p.resID }

// Atlas exposes the allocator for renderers and serializers.
func (p *Pool) Atlas() *atlas.Allocator { return p.alloc }

// Len returns the number of tiles.
func (p *Pool) Len() int { return len(p.entries) }

// Subscribe registers fn for pool events and returns a function that
// removes it.
func (p *Pool) Subscribe(fn func(Event)) func() {
	return p.subs.add(fn)
}

// Add stores img as a new physical tile. img must be exactly one tile in size.
func (p *Pool) Add(img image.Image) (Tile, error) {
	if err := p.checkSize(img); err != nil {
		return Tile{}, err
	}
	t := Tile{ID: tile.NewID(), Pool: p.resID, Kind: KindPhysical}
	if err := p.insert(t, toRGBA(img)); err != nil {
		return Tile{}, err
	}
	return t, nil
}

// AddDependent creates a tile whose pixels are tr applied to source. Quarter
// turns require square tiles.
func (p *Pool) AddDependent(source tile.ID, tr Transform) (Tile, error) {
	src, ok := p.entries[source]
	if !ok {
		return Tile{}, fmt.Errorf("tilepool: dependent of %v: %w", source, ErrUnknownIdentity)
	}
	if src.tile.Kind != KindPhysical {
		return Tile{}, fmt.Errorf("tilepool: dependent of %v: %w", source, ErrInvalidSource)
	}
	if tr.swapsAxes() && p.tileW != p.tileH {
		return Tile{}, fmt.Errorf("tilepool: %v of %dx%d tile: %w", tr, p.tileW, p.tileH, ErrDimensionMismatch)
	}
	pix, err := p.alloc.Pixels(src.slot)
	if err != nil {
		return Tile{}, err
	}
	t := Tile{ID: tile.NewID(), Pool: p.resID, Kind: KindDependent, Source: source, Transform: tr}
	if err := p.insert(t, tr.apply(pix)); err != nil {
		return Tile{}, err
	}
	src.dependents = append(src.dependents, t.ID)
	return t, nil
}

// Update overwrites a physical tile's pixels and recomputes its dependents.
func (p *Pool) Update(id tile.ID, img image.Image) error {
	e, ok := p.entries[id]
	if !ok {
		return fmt.Errorf("tilepool: update %v: %w", id, ErrUnknownIdentity)
	}
	if e.tile.Kind != KindPhysical {
		return fmt.Errorf("tilepool: update %v: %w", id, ErrInvalidSource)
	}
	if err := p.checkSize(img); err != nil {
		return err
	}
	pix := toRGBA(img)
	if err := p.write(e, pix); err != nil {
		return err
	}
	p.subs.emit(Event{Kind: EventTileUpdated, Tile: id})
	for _, dep := range e.dependents {
		d := p.entries[dep]
		if err := p.write(d, d.tile.Transform.apply(pix)); err != nil {
			return err
		}
		p.subs.emit(Event{Kind: EventTileUpdated, Tile: dep})
	}
	return nil
}

// Remove deletes a tile and frees its slot. Removing a physical tile first
// removes the tiles that depend on it.
func (p *Pool) Remove(id tile.ID) error {
	e, ok := p.entries[id]
	if !ok {
		return fmt.Errorf("tilepool: remove %v: %w", id, ErrUnknownIdentity)
	}
	for _, dep := range slices.Clone(e.dependents) {
		if err := p.Remove(dep); err != nil {
			return err
		}
	}
	if e.tile.Kind == KindDependent {
		if src, ok := p.entries[e.tile.Source]; ok {
			src.dependents = slices.DeleteFunc(src.dependents, func(d tile.ID) bool { return d == id })
		}
	}

	delete(p.entries, id)
	p.order = slices.DeleteFunc(p.order, func(o tile.ID) bool { return o == id })
	p.unindex(e)

	// Free may shrink the atlas; e is already gone so the relocation pass
	// only sees survivors.
	if err := p.alloc.Free(e.slot); err != nil {
		return fmt.Errorf("tilepool: remove %v: %w", id, err)
	}
	p.subs.emit(Event{Kind: EventTileRemoved, Tile: id})
	return nil
}

// Get returns the tile with the given identity.
func (p *Pool) Get(id tile.ID) (Tile, bool) {
	e, ok := p.entries[id]
	if !ok {
		return Tile{}, false
	}
	return e.tile, true
}

// Has reports whether the pool owns id.
func (p *Pool) Has(id tile.ID) bool {
	_, ok := p.entries[id]
	return ok
}

// Tiles returns every tile in insertion order.
func (p *Pool) Tiles() []Tile {
	out := make([]Tile, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.entries[id].tile)
	}
	return out
}

// Dependents returns the tiles derived from id.
func (p *Pool) Dependents(id tile.ID) []tile.ID {
	if e, ok := p.entries[id]; ok {
		return slices.Clone(e.dependents)
	}
	return nil
}

// Slot returns the tile's current atlas slot.
func (p *Pool) Slot(id tile.ID) (tile.Coord, bool) {
	e, ok := p.entries[id]
	if !ok {
		return tile.Coord{}, false
	}
	return e.slot, true
}

// SlotRect returns the tile's pixel rectangle in the atlas buffer.
func (p *Pool) SlotRect(id tile.ID) (image.Rectangle, bool) {
	e, ok := p.entries[id]
	if !ok {
		return image.Rectangle{}, false
	}
	return p.alloc.SlotRect(e.slot), true
}

// Pixels returns a copy of the tile's pixels.
func (p *Pool) Pixels(id tile.ID) (*image.RGBA, error) {
	e, ok := p.entries[id]
	if !ok {
		return nil, fmt.Errorf("tilepool: pixels of %v: %w", id, ErrUnknownIdentity)
	}
	return p.alloc.Pixels(e.slot)
}

// HasContent reports whether any tile in the pool has exactly img's pixels.
func (p *Pool) HasContent(img image.Image) bool {
	return len(p.byHash[hashPixels(toRGBA(img))]) > 0
}

func (p *Pool) checkSize(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != p.tileW || b.Dy() != p.tileH {
		return fmt.Errorf("tilepool: %dx%d image in %dx%d pool %q: %w",
			b.Dx(), b.Dy(), p.tileW, p.tileH, p.name, ErrDimensionMismatch)
	}
	return nil
}

func (p *Pool) insert(t Tile, pix *image.RGBA) error {
	slot, err := p.alloc.Allocate(p.tileW, p.tileH)
	if err != nil {
		return fmt.Errorf("tilepool: add to %q: %w", p.name, err)
	}
	e := &entry{tile: t, slot: slot}
	p.entries[t.ID] = e
	p.order = append(p.order, t.ID)
	if err := p.write(e, pix); err != nil {
		delete(p.entries, t.ID)
		p.order = p.order[:len(p.order)-1]
		_ = p.alloc.Free(slot)
		return err
	}
	p.subs.emit(Event{Kind: EventTileAdded, Tile: t.ID})
	return nil
}

// write pushes pix into the entry's slot and re-indexes its hash.
func (p *Pool) write(e *entry, pix *image.RGBA) error {
	if err := p.alloc.Write(e.slot, pix); err != nil {
		return fmt.Errorf("tilepool: write %v: %w", e.tile.ID, err)
	}
	p.unindex(e)
	e.hash = hashPixels(pix)
	p.byHash[e.hash] = append(p.byHash[e.hash], e.tile.ID)
	return nil
}

func (p *Pool) unindex(e *entry) {
	ids := p.byHash[e.hash]
	ids = slices.DeleteFunc(ids, func(o tile.ID) bool { return o == e.tile.ID })
	if len(ids) == 0 {
		delete(p.byHash, e.hash)
		return
	}
	p.byHash[e.hash] = ids
}

func (p *Pool) onAtlasEvent(evt atlas.Event) {
	if evt.Kind == atlas.EventShrunk {
		for _, e := range p.entries {
			if slot, ok := evt.Moves[e.slot]; ok {
				e.slot = slot
			}
		}
		p.log.Debug("pool atlas re-packed", "pool", p.name, "tiles", len(p.entries))
	}
	if evt.Invalidates() {
		p.subs.emit(Event{Kind: EventInvalidated, Atlas: evt})
	}
}

func hashPixels(pix *image.RGBA) digest {
	return sha256.Sum256(pix.Pix)
}
