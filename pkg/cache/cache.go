// Package cache keeps one projection per file and replaces it when the file's
// version changes.
package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/singleflight"
)

// State of a file with respect to the cache.
type State int

const (
	// StateNoTemplate means nothing is cached for the file.
	StateNoTemplate State = iota
	StateCached
	// StateStale means the cached projection was built from another version.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateCached:
		return "cached"
	case StateStale:
		return "stale"
	}
	return "no-template"
}

// BuildFunc produces a projection for a file. A nil projection means the file
// has no template.
type BuildFunc func(ctx context.Context) (*Projection, error)

type Cache struct {
	mu         sync.RWMutex
	entries    map[string]*Projection
	generation uint64

	group singleflight.Group
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]*Projection),
	}
}

// Get returns the projection stored for fileName, whatever its version.
func (c *Cache) Get(fileName string) (*Projection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[fileName]
	return p, ok
}

// Lookup returns the projection for fileName only if it was built from version.
func (c *Cache) Lookup(fileName, version string) (*Projection, bool) {
	p, ok := c.Get(fileName)
	if !ok || p.BasedOnVersion != version {
		return nil, false
	}
	return p, true
}

// Put stores p, replacing any previous entry for its file, and stamps it with
// the next generation.
func (c *Cache) Put(p *Projection) *Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	p.Generation = c.generation
	c.entries[p.FileName] = p
	return p
}

// GetOrBuild returns the projection for fileName at version, calling build
// when there is none or it is stale. Concurrent calls for the same file and
// version share one build. The boolean reports whether a build ran.
func (c *Cache) GetOrBuild(ctx context.Context, fileName, version string, build BuildFunc) (*Projection, bool, error) {
	if p, ok := c.Lookup(fileName, version); ok {
		zerolog.Ctx(ctx).Trace().Str("file", fileName).Str("version", version).Msg("projection cache hit")
		return p, false, nil
	}

	v, err, _ := c.group.Do(fileName+"@"+version, func() (any, error) {
		if p, ok := c.Lookup(fileName, version); ok {
			return p, nil
		}
		zerolog.Ctx(ctx).Debug().Str("file", fileName).Str("version", version).Str("state", c.State(fileName, version).String()).Msg("rebuilding projection")

		p, err := build(ctx)
		if err != nil {
			return nil, errors.Errorf("building projection for %s: %w", fileName, err)
		}
		if p == nil {
			c.Delete(fileName)
			return (*Projection)(nil), nil
		}
		p.FileName = fileName
		p.BasedOnVersion = version
		return c.Put(p), nil
	})
	if err != nil {
		return nil, false, err
	}
	p, _ := v.(*Projection)
	return p, true, nil
}

// State reports whether fileName has a projection and whether it matches version.
func (c *Cache) State(fileName, version string) State {
	p, ok := c.Get(fileName)
	switch {
	case !ok:
		return StateNoTemplate
	case p.BasedOnVersion != version:
		return StateStale
	}
	return StateCached
}

func (c *Cache) Delete(fileName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fileName)
}

// Prune drops every entry whose file is not in live and returns the dropped names.
func (c *Cache) Prune(live []string) []string {
	keep := make(map[string]bool, len(live))
	for _, name := range live {
		keep[name] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var dropped []string
	for name := range c.entries {
		if !keep[name] {
			dropped = append(dropped, name)
			delete(c.entries, name)
		}
	}
	sort.Strings(dropped)
	return dropped
}

// Generation increases by one every time a projection is stored.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
