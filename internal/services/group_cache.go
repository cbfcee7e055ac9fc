package services

import (
	"sync"
	"time"

	"github.com/hanko-field/configurator/internal/nodemap"
)

// rgbGroupCache keeps the colour groups of the latest compile per product.
type rgbGroupCache struct {
	ttl time.Duration
	now func() time.Time
	mu  sync.RWMutex
	m   map[string]rgbGroupEntry
}

type rgbGroupEntry struct {
	runID   string
	groups  map[string]nodemap.RGBGroup
	expires time.Time
}

func newRGBGroupCache(ttl time.Duration, now func() time.Time) *rgbGroupCache {
	return &rgbGroupCache{
		ttl: ttl,
		now: now,
		m:   make(map[string]rgbGroupEntry),
	}
}

func (c *rgbGroupCache) Get(productID string) (rgbGroupEntry, bool) {
	c.mu.RLock()
	entry, ok := c.m[productID]
	c.mu.RUnlock()
	if !ok {
		return rgbGroupEntry{}, false
	}
	if c.now().After(entry.expires) {
		c.mu.Lock()
		if current, still := c.m[productID]; still && current.expires.Equal(entry.expires) {
			delete(c.m, productID)
		}
		c.mu.Unlock()
		return rgbGroupEntry{}, false
	}
	return entry, true
}

func (c *rgbGroupCache) Put(productID, runID string, groups map[string]nodemap.RGBGroup) {
	c.mu.Lock()
	c.m[productID] = rgbGroupEntry{runID: runID, groups: groups, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len reports the number of entries, expired or not.
func (c *rgbGroupCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
