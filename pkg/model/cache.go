package model

import (
	"sync"

	"github.com/tauraamui/patterncam/pkg/log"
	"github.com/tauraamui/xerror"
)

// Cache holds loaded models keyed by name.
type Cache struct {
	catalog Catalog
	load    func(path string) (Cascade, error)
	mu      sync.Mutex
	handles map[string]*Handle
}

func NewCache(catalog Catalog) *Cache {
	return NewCacheWithLoader(catalog, func(path string) (Cascade, error) {
		return loadCascade(path)
	})
}

// NewCacheWithLoader builds a cache which loads definitions with load
// instead of OpenCV.
func NewCacheWithLoader(catalog Catalog, load func(path string) (Cascade, error)) *Cache {
	return &Cache{catalog: catalog, load: load, handles: map[string]*Handle{}}
}

func (c *Cache) Catalog() Catalog {
	return c.catalog
}

// Get returns the named model, loading it on first use.
func (c *Cache) Get(name string) (*Handle, error) {
	name = Name(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.handles[name]; ok {
		return h, nil
	}

	path, err := c.catalog.Path(name)
	if err != nil {
		return nil, err
	}

	log.Info("Loading model [%s] from %s", name, path)
	cc, err := c.load(path)
	if err != nil {
		return nil, xerror.Errorf("unable to load model [%s]: %w", name, err)
	}

	h := &Handle{name: name, c: cc}
	c.handles[name] = h
	return h, nil
}

// Retain closes and forgets every model not named in keep.
func (c *Cache) Retain(keep ...string) {
	kept := map[string]struct{}{}
	for _, k := range keep {
		kept[Name(k)] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, h := range c.handles {
		if _, ok := kept[name]; ok {
			continue
		}
		log.Debug("Discarding model [%s]", name)
		if err := h.Close(); err != nil {
			log.Error("unable to close model [%s]: %v", name, err)
		}
		delete(c.handles, name)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

func (c *Cache) Close() {
	c.Retain()
}
