// Package detail loads the versions of a single collection in one repository,
// with a single-slot cache for the most recently loaded collection.
package detail

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/blackwell-systems/hubctl/internal/distro"
	"github.com/blackwell-systems/hubctl/internal/hub"
)

// Key identifies a collection.
type Key struct {
	Namespace string
	Name      string
}

func (k Key) String() string { return k.Namespace + "." + k.Name }

// Detail is a fully resolved collection.
type Detail struct {
	Key Key
	// Versions are ordered newest first.
	Versions []hub.CollectionVersionSearch
	// Current is the highest version.
	Current  hub.CollectionVersionSearch
	BasePath string
}

// Cache holds at most one Detail. The zero value is ready to use.
type Cache struct {
	mu    sync.Mutex
	entry *Detail
}

// Get returns the cached detail for key, if that is what the slot holds.
func (c *Cache) Get(key Key) (*Detail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil || c.entry.Key != key {
		return nil, false
	}
	return c.entry, true
}

// Put replaces the slot.
func (c *Cache) Put(d *Detail) {
	c.mu.Lock()
	c.entry = d
	c.mu.Unlock()
}

// Invalidate empties the slot. Mutating commands call it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

// Searcher lists collection versions.
type Searcher interface {
	ListCollectionVersions(ctx context.Context, params url.Values) (*hub.Page[hub.CollectionVersionSearch], error)
}

// Loader fetches collection details through a caller-owned Cache.
type Loader struct {
	search   Searcher
	resolver *distro.Resolver
	cache    *Cache
}

// NewLoader creates a Loader. A nil cache disables caching.
func NewLoader(s Searcher, r *distro.Resolver, c *Cache) *Loader {
	if c == nil {
		c = &Cache{}
	}
	return &Loader{search: s, resolver: r, cache: c}
}

// Cache returns the loader's cache.
func (l *Loader) Cache() *Cache { return l.cache }

// Load returns the detail for key in repository. A cached entry for the same
// key is returned without any request unless force is set.
func (l *Loader) Load(ctx context.Context, key Key, repository string, force bool) (*Detail, error) {
	if !force {
		if d, ok := l.cache.Get(key); ok {
			return d, nil
		}
	}

	params := url.Values{
		"namespace": {key.Namespace},
		"name":      {key.Name},
		"order_by":  {"-version"},
	}
	if repository != "" {
		params.Set("repository_name", repository)
	}
	page, err := l.search.ListCollectionVersions(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, &hub.Error{Kind: hub.KindNotFound, Message: fmt.Sprintf("collection %s not found", key)}
	}

	current := Highest(page.Data)
	basePath, err := l.resolver.BasePathFor(ctx, current.Repository)
	if err != nil {
		return nil, err
	}

	d := &Detail{Key: key, Versions: page.Data, Current: current, BasePath: basePath}
	l.cache.Put(d)
	return d, nil
}

// Highest returns the row flagged is_highest, else the greatest semantic
// version, else the first row. rows must not be empty.
func Highest(rows []hub.CollectionVersionSearch) hub.CollectionVersionSearch {
	for _, r := range rows {
		if r.IsHighest {
			return r
		}
	}
	best := rows[0]
	var bestV *semver.Version
	for _, r := range rows {
		v, err := semver.NewVersion(r.CollectionVersion.Version)
		if err != nil {
			continue
		}
		if bestV == nil || v.GreaterThan(bestV) {
			best, bestV = r, v
		}
	}
	return best
}
