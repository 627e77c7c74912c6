// Package memory provides an in-memory DecisionCache for tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"
	"time"

	id "commune/pkg/domain"
	"commune/pkg/requestcontext"
)

type entry struct {
	allowed   bool
	expiresAt time.Time
	subject   id.UserID
}

// Cache implements ports.DecisionCache with a map guarded by a RWMutex.
// Expired entries are dropped lazily on read.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	index   map[id.UserID]map[string]struct{}
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		index:   make(map[id.UserID]map[string]struct{}),
	}
}

func (c *Cache) Get(ctx context.Context, key string) (bool, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, false, nil
	}
	if requestcontext.Now(ctx).After(e.expiresAt) {
		c.mu.Lock()
		c.dropLocked(key)
		c.mu.Unlock()
		return false, false, nil
	}
	return e.allowed, true, nil
}

func (c *Cache) Set(ctx context.Context, subject id.UserID, key string, allowed bool, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		allowed:   allowed,
		expiresAt: requestcontext.Now(ctx).Add(ttl),
		subject:   subject,
	}
	if c.index[subject] == nil {
		c.index[subject] = make(map[string]struct{})
	}
	c.index[subject][key] = struct{}{}
	return nil
}

func (c *Cache) Remove(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.dropLocked(key)
	}
	return nil
}

func (c *Cache) RemoveSubject(_ context.Context, subject id.UserID) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := c.index[subject]
	for key := range keys {
		delete(c.entries, key)
	}
	delete(c.index, subject)
	return len(keys), nil
}

func (c *Cache) dropLocked(key string) {
	if e, ok := c.entries[key]; ok {
		delete(c.entries, key)
		if keys := c.index[e.subject]; keys != nil {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.index, e.subject)
			}
		}
	}
}

// Len returns the number of live entries. Test helper.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
