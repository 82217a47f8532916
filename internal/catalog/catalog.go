// Package catalog holds the chord sets the service offers: compiled-in
// defaults plus optional YAML documents from a library directory.
package catalog

import (
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/starford/fretwise/internal/apperr"
	"github.com/starford/fretwise/internal/checksum"
	"github.com/starford/fretwise/internal/storage"
	"github.com/starford/fretwise/internal/theory"
)

// Catalog is an immutable snapshot of every available chord set.
type Catalog struct {
	sets     map[string]*theory.ChordSet
	order    []string
	sources  map[string]string
	version  string
	loadedAt time.Time
}

// New builds a catalog from sets. Later sets replace earlier ones with the
// same name. sources maps set names to the file they were read from.
func New(sets []*theory.ChordSet, sources map[string]string, version string) *Catalog {
	c := &Catalog{
		sets:     make(map[string]*theory.ChordSet, len(sets)),
		sources:  make(map[string]string, len(sources)),
		version:  version,
		loadedAt: time.Now(),
	}
	for _, s := range sets {
		if _, ok := c.sets[s.Name()]; !ok {
			c.order = append(c.order, s.Name())
		}
		c.sets[s.Name()] = s
	}
	for k, v := range sources {
		c.sources[k] = v
	}
	return c
}

// Builtin returns a catalog with only the compiled-in sets.
func Builtin() *Catalog {
	return New(theory.BuiltinSets(), nil, "builtin")
}

// Set returns the chord set called name.
func (c *Catalog) Set(name string) (*theory.ChordSet, error) {
	s, ok := c.sets[name]
	if !ok {
		return nil, fmt.Errorf("chord set %q: %w", name, apperr.ErrNotFound)
	}
	return s, nil
}

// Sets returns every chord set in load order.
func (c *Catalog) Sets() []*theory.ChordSet {
	out := make([]*theory.ChordSet, len(c.order))
	for i, n := range c.order {
		out[i] = c.sets[n]
	}
	return out
}

// Source returns the library file a set came from, or "" for built-ins.
func (c *Catalog) Source(name string) string { return c.sources[name] }

// Version identifies the library contents the catalog was built from.
func (c *Catalog) Version() string { return c.version }

// LoadedAt returns when the snapshot was built.
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }

// Load reads every document in store and layers it over the built-in sets.
// Invalid documents are logged and skipped. A nil store yields Builtin().
func Load(store storage.Provider, logger *slog.Logger) (*Catalog, error) {
	if store == nil {
		return Builtin(), nil
	}
	files, err := store.List("")
	if err != nil {
		return nil, err
	}

	sets := theory.BuiltinSets()
	sources := make(map[string]string)
	sums := make(map[string]string, len(files))
	for _, f := range files {
		sums[f.Path] = f.Checksum
		data, err := store.Read(f.Path)
		if err != nil {
			logger.Warn("catalog: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		set, err := Parse(data)
		if err != nil {
			logger.Warn("catalog: invalid document", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if prev, dup := sources[set.Name()]; dup {
			logger.Warn("catalog: duplicate set name",
				slog.String("set", set.Name()),
				slog.String("path", f.Path),
				slog.String("previous", prev))
		}
		sources[set.Name()] = f.Path
		sets = append(sets, set)
		logger.Debug("catalog: loaded", slog.String("set", set.Name()), slog.String("path", f.Path))
	}
	return New(sets, sources, checksum.Combine(sums)), nil
}

// Registry publishes the current catalog. Readers never see a partially
// loaded catalog.
type Registry struct {
	cur atomic.Pointer[Catalog]
}

// NewRegistry returns a registry serving c.
func NewRegistry(c *Catalog) *Registry {
	r := &Registry{}
	r.cur.Store(c)
	return r
}

// Current returns the active catalog.
func (r *Registry) Current() *Catalog { return r.cur.Load() }

// Reload loads store and installs the result when the library changed.
func (r *Registry) Reload(store storage.Provider, logger *slog.Logger) (*Catalog, bool, error) {
	c, err := Load(store, logger)
	if err != nil {
		return nil, false, err
	}
	if cur := r.Current(); cur != nil && cur.Version() == c.Version() {
		return cur, false, nil
	}
	r.cur.Store(c)
	return c, true, nil
}

// Names returns the sorted names of all sets in c.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.sets))
	for n := range c.sets {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// WriteBuiltins writes every compiled-in set to store as <name>.yaml,
// skipping files that already exist unless overwrite is set.
func WriteBuiltins(store storage.Provider, overwrite bool) ([]string, error) {
	var written []string
	for _, set := range theory.BuiltinSets() {
		path := set.Name() + ".yaml"
		if !overwrite {
			if _, err := store.Read(path); err == nil {
				continue
			}
		}
		data, err := Encode(set)
		if err != nil {
			return written, err
		}
		if err := store.Write(path, data); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
