package autotile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/milk9111/tileforge/internal/logging"
)

// Registry holds classes by name. It starts with the embedded classes;
// loaded files override them and may add new ones.
type Registry struct {
	classes map[string]*Class
	builtin map[string]*Class
	files   map[string]string // path -> class name
}

// NewRegistry returns a registry of the embedded classes.
func NewRegistry() *Registry {
	r := &Registry{
		classes: make(map[string]*Class),
		builtin: make(map[string]*Class),
		files:   make(map[string]string),
	}
	for _, name := range BuiltinNames() {
		c := mustBuiltin(name)
		r.builtin[c.Name] = c
		r.classes[c.Name] = c
	}
	return r
}

// Class returns the class registered under name.
func (r *Registry) Class(name string) (*Class, error) {
	c, ok := r.classes[name]
	if !ok {
		return nil, fmt.Errorf("autotile: class %q: %w", name, ErrUnknownClass)
	}
	return c, nil
}

// Register adds or replaces a class.
func (r *Registry) Register(c *Class) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.classes[c.Name] = c
	return nil
}

// Names returns the registered class names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.classes))
	for name := range r.classes {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// LoadDir loads every class file in dir. Files that fail to load are
// skipped and reported together in the returned error.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("autotile: load dir %s: %w", dir, err)
	}
	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !isClassFile(path) && !isScriptFile(path) {
			continue
		}
		if err := r.Reload(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reload (re)reads one class file. If the file no longer exists its class is
// dropped, restoring the embedded class of the same name if there is one. A
// file that fails to parse leaves the previous class in place.
func (r *Registry) Reload(path string) error {
	c, err := LoadClassFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.forget(path)
		return nil
	}
	if err != nil {
		logging.Logger().Warn("class reload failed", "path", path, "err", err)
		return err
	}
	if old, ok := r.files[path]; ok && old != c.Name {
		r.forget(path)
	}
	r.files[path] = c.Name
	r.classes[c.Name] = c
	logging.Logger().Debug("class loaded", "path", path, "class", c.Name, "rules", len(c.Table.rules))
	return nil
}

func (r *Registry) forget(path string) {
	name, ok := r.files[path]
	if !ok {
		return
	}
	delete(r.files, path)
	if b, ok := r.builtin[name]; ok {
		r.classes[name] = b
	} else {
		delete(r.classes, name)
	}
	logging.Logger().Debug("class dropped", "path", path, "class", name)
}
