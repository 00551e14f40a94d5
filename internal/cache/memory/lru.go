// Package memory provides a bounded in-process result cache: least-recently-used eviction
// by entry count plus a per-entry TTL.
package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/davidbz/kiln/internal/domain"
)

// DefaultMaxEntries bounds the cache when no size is configured.
const DefaultMaxEntries = 256

type entry struct {
	key       string
	data      []byte
	expiresAt time.Time
}

// LRU implements domain.ResultCache in memory.
type LRU struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List
	items      map[string]*list.Element
	now        func() time.Time
}

// Option configures an LRU.
type Option func(*LRU)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *LRU) {
		c.now = now
	}
}

// NewLRU creates a cache holding at most maxEntries results.
func NewLRU(maxEntries int, opts ...Option) *LRU {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	c := &LRU{
		maxEntries: maxEntries,
		order:      list.New(),
		items:      make(map[string]*list.Element, maxEntries),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the stored data, or domain.ErrCacheMiss when absent or expired.
func (c *LRU) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}

	e := elem.Value.(*entry)
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.remove(elem)
		return nil, domain.ErrCacheMiss
	}

	c.order.MoveToFront(elem)
	return append([]byte(nil), e.data...), nil
}

// Set stores data for ttl; ttl <= 0 never expires. The least recently used entry is evicted
// when the cache is full.
func (c *LRU) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	stored := append([]byte(nil), data...)

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry)
		e.data = stored
		e.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return nil
	}

	c.items[key] = c.order.PushFront(&entry{key: key, data: stored, expiresAt: expiresAt})

	for c.order.Len() > c.maxEntries {
		c.remove(c.order.Back())
	}
	return nil
}

// Len returns the number of stored entries, expired ones included until touched.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRU) remove(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*entry).key)
}
