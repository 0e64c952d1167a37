// Package catalog holds the fixed roster of quiz subjects and tracks which of
// them have a usable image.
package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultImagePrefix is where component images are served from.
const DefaultImagePrefix = "/img/components"

var (
	// ErrNoValidItems means every item has been invalidated. The roster is static,
	// so this signals a broken deployment rather than a user error.
	ErrNoValidItems = errors.New("catalog: no valid items")
	ErrEmptyName    = errors.New("catalog: empty component name")
	ErrDuplicate    = errors.New("catalog: duplicate component name")
)

// Item is one quiz subject.
type Item struct {
	Name     string `json:"name"`
	ImageRef string `json:"image"`
	Valid    bool   `json:"valid"`
}

// Catalog owns the roster. Membership is fixed at New; only validity changes.
type Catalog struct {
	mu     sync.RWMutex
	items  []Item
	index  map[string]int
	prefix string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithImagePrefix sets the URL prefix used to build each item's ImageRef.
func WithImagePrefix(prefix string) Option {
	return func(c *Catalog) {
		c.prefix = prefix
	}
}

// New builds a catalog with every item valid.
func New(names []string, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		index:  make(map[string]int, len(names)),
		prefix: DefaultImagePrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.items = make([]Item, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, ErrEmptyName
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, name)
		}
		c.index[name] = len(c.items)
		c.items = append(c.items, Item{
			Name:     name,
			ImageRef: ImageRef(c.prefix, name),
			Valid:    true,
		})
	}
	return c, nil
}

// ImageRef derives the asset path for name under prefix.
func ImageRef(prefix, name string) string {
	return path.Join("/", prefix, name+".png")
}

// Len returns the roster size, valid or not.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Item looks up an item by name.
func (c *Catalog) Item(name string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[name]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Items returns a copy of the roster in initialisation order.
func (c *Catalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Valid returns the items still eligible for selection.
func (c *Catalog) Valid() []Item {
	return c.Others("")
}

// Others returns valid items except the one named exclude.
func (c *Catalog) Others(exclude string) []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if it.Valid && it.Name != exclude {
			out = append(out, it)
		}
	}
	return out
}

// AllNames lists every name from initialisation, for free-text autocomplete.
func (c *Catalog) AllNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.items))
	for i, it := range c.items {
		out[i] = it.Name
	}
	return out
}

// PickRandom draws uniformly from the valid items.
func (c *Catalog) PickRandom(rng *rand.Rand) (Item, error) {
	valid := c.Valid()
	if len(valid) == 0 {
		return Item{}, ErrNoValidItems
	}
	return valid[rng.Intn(len(valid))], nil
}

// Invalidate permanently excludes name from selection. It reports whether the
// item existed and was valid before the call.
func (c *Catalog) Invalidate(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[name]
	if !ok || !c.items[i].Valid {
		return false
	}
	c.items[i].Valid = false
	return true
}

// Apply records the outcome of one asset load.
func (c *Catalog) Apply(res LoadResult) {
	if res.Err == nil {
		return
	}
	if c.Invalidate(res.Name) {
		log.Warn().Err(res.Err).Str("component", res.Name).Msg("component image failed to load, marking invalid")
	}
}
