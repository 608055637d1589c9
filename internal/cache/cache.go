// Package cache holds client-side entity state keyed by kind and id.
// Values are stored JSON-encoded so that a snapshot is byte-exact and an
// entry is always replaced whole. Speculative writes go through Mutation.
package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Kind names a family of cache entries.
type Kind string

const (
	KindTask          Kind = "task"
	KindTaskList      Kind = "task_list"
	KindComments      Kind = "comments"
	KindSubtasks      Kind = "subtasks"
	KindCollaborators Kind = "collaborators"
	KindTaskTags      Kind = "task_tags"
	KindWorkspaceTags Kind = "workspace_tags"
	KindActivity      Kind = "activity"
	KindFriendships   Kind = "friendships"
)

// Key identifies a cache entry.
type Key struct {
	Kind Kind
	ID   string
}

func (k Key) String() string { return string(k.Kind) + ":" + k.ID }

// Cache is safe for concurrent use.
type Cache struct {
	mu          sync.Mutex
	entries     map[Key][]byte
	stale       map[Key]bool
	pending     map[Key][]*Mutation
	versions    map[Key]uint64
	deps        map[Key][]Key
	subscribers map[int]func(Key)
	nextSub     int
	logger      *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for mutation tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:     make(map[Key][]byte),
		stale:       make(map[Key]bool),
		pending:     make(map[Key][]*Mutation),
		versions:    make(map[Key]uint64),
		deps:        make(map[Key][]Key),
		subscribers: make(map[int]func(Key)),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores an authoritative value, replacing any existing entry, and
// clears its stale mark.
func (c *Cache) Set(key Key, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.write(key, data)
	delete(c.stale, key)
	return nil
}

// Get decodes the entry for key into out. It reports false when the key is
// absent.
func (c *Cache) Get(key Key, out interface{}) (bool, error) {
	data, ok := c.Raw(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return true, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Raw returns a copy of the encoded entry for key.
func (c *Cache) Raw(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Delete removes the entry for key.
func (c *Cache) Delete(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.write(key, nil)
	delete(c.stale, key)
}

// DependsOn declares aggregate entries derived from key. A committed
// mutation on key marks each of them stale.
func (c *Cache) DependsOn(key Key, aggregates ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, agg := range aggregates {
		if !containsKey(c.deps[key], agg) {
			c.deps[key] = append(c.deps[key], agg)
		}
	}
}

// Stale reports whether key was invalidated since it was last Set.
func (c *Cache) Stale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale[key]
}

// OnInvalidate registers fn to be called with each aggregate key marked
// stale. fn runs outside the cache lock. The returned func unsubscribes.
func (c *Cache) OnInvalidate(fn func(Key)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Pending returns the number of unresolved mutations on key.
func (c *Cache) Pending(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending[key])
}

// invalidate marks the aggregates of key stale. Callers hold c.mu and must
// call notify with the result after unlocking.
func (c *Cache) invalidate(key Key) ([]Key, []func(Key)) {
	aggs := append([]Key(nil), c.deps[key]...)
	if len(aggs) == 0 {
		return nil, nil
	}
	for _, agg := range aggs {
		c.stale[agg] = true
	}
	subs := make([]func(Key), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	return aggs, subs
}

func notify(keys []Key, subs []func(Key)) {
	for _, k := range keys {
		for _, fn := range subs {
			fn(k)
		}
	}
}

func containsKey(keys []Key, k Key) bool {
	for _, existing := range keys {
		if existing == k {
			return true
		}
	}
	return false
}
