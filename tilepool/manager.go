package tilepool

import (
	"fmt"
	"slices"

	"github.com/milk9111/tileforge/atlas"
)

// Manager holds named pools whose atlases share one resource store.
type Manager struct {
	store *atlas.Store
	pools map[string]*Pool
	names []string
}

// NewManager returns an empty manager. A nil store gets a fresh one.
func NewManager(store *atlas.Store) *Manager {
	if store == nil {
		store = atlas.NewStore()
	}
	return &Manager{store: store, pools: make(map[string]*Pool)}
}

// Store returns the shared resource store.
func (m *Manager) Store() *atlas.Store { return m.store }

// Create adds a pool of tileW x tileH tiles.
func (m *Manager) Create(name string, tileW, tileH int, opts ...Option) (*Pool, error) {
	if _, ok := m.pools[name]; ok {
		return nil, fmt.Errorf("tilepool: create %q: %w", name, ErrPoolExists)
	}
	p, err := New(name, tileW, tileH, append(opts, WithStore(m.store))...)
	if err != nil {
		return nil, err
	}
	m.pools[name] = p
	m.names = append(m.names, name)
	return p, nil
}

// Pool returns the named pool.
func (m *Manager) Pool(name string) (*Pool, bool) {
	p, ok := m.pools[name]
	return p, ok
}

// Remove closes and forgets the named pool.
func (m *Manager) Remove(name string) error {
	p, ok := m.pools[name]
	if !ok {
		return fmt.Errorf("tilepool: remove %q: %w", name, ErrUnknownPool)
	}
	p.Close()
	delete(m.pools, name)
	m.names = slices.DeleteFunc(m.names, func(n string) bool { return n == name })
	return nil
}

// Names returns pool names in creation order.
func (m *Manager) Names() []string {
	return slices.Clone(m.names)
}
