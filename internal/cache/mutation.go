package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrInvalidTransition is returned when a mutation is driven out of a state
// that does not allow it.
var ErrInvalidTransition = errors.New("invalid mutation transition")

// State is the lifecycle of a Mutation: idle, then pending, then committed
// or rolled back.
type State int

const (
	StateIdle State = iota
	StatePending
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Patch rewrites an encoded entry. data is nil when the entry is absent. A
// nil result removes the entry.
type Patch func(data []byte) ([]byte, error)

// PatchOf adapts fn, which works on the decoded value, into a Patch. An
// absent entry decodes to the zero value of T.
func PatchOf[T any](fn func(T) T) Patch {
	return func(data []byte) ([]byte, error) {
		var v T
		if data != nil {
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, err
			}
		}
		return json.Marshal(fn(v))
	}
}

// Mutation is one speculative write to a cache entry.
//
// Mutations on the same key are ordered by when they were applied. Whole
// value mutations (Begin, Commit, Rollback) follow ownership: the most
// recently applied pending mutation owns the entry, and an earlier one that
// resolves hands its base state to the next mutation instead of writing.
//
// Patch mutations (BeginPatch, CommitPatch, RollbackPatch) suit entries that
// hold a collection several mutations touch at once. They rewrite the entry
// as it is when they resolve and apply the same rewrite to the snapshots of
// later mutations, so no mutation's change is lost to another's base.
type Mutation struct {
	cache    *Cache
	key      Key
	state    State
	snapshot []byte
	existed  bool
	version  uint64
}

// Prepare returns an idle mutation for key.
func (c *Cache) Prepare(key Key) *Mutation {
	return &Mutation{cache: c, key: key}
}

// Begin captures the current entry for key, writes optimistic in its place
// and returns the pending mutation. A nil optimistic value removes the
// entry.
func (c *Cache) Begin(key Key, optimistic interface{}) (*Mutation, error) {
	m := c.Prepare(key)
	if err := m.Apply(optimistic); err != nil {
		return nil, err
	}
	return m, nil
}

// BeginPatch is Begin with the optimistic value computed from the entry
// under the cache lock. apply runs while the lock is held and must not call
// back into the cache.
func (c *Cache) BeginPatch(key Key, apply Patch) (*Mutation, error) {
	m := c.Prepare(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := apply(c.entries[key])
	if err != nil {
		return nil, fmt.Errorf("patching %s: %w", key, err)
	}
	c.apply(m, data)
	return m, nil
}

// Key returns the entry the mutation writes.
func (m *Mutation) Key() Key { return m.key }

// State returns the current lifecycle state.
func (m *Mutation) State() State {
	m.cache.mu.Lock()
	defer m.cache.mu.Unlock()
	return m.state
}

// Apply moves an idle mutation to pending by snapshotting the entry and
// writing the optimistic value.
func (m *Mutation) Apply(optimistic interface{}) error {
	var data []byte
	if optimistic != nil {
		var err error
		if data, err = json.Marshal(optimistic); err != nil {
			return fmt.Errorf("encoding optimistic %s: %w", m.key, err)
		}
	}

	c := m.cache
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.state != StateIdle {
		return fmt.Errorf("apply from %s: %w", m.state, ErrInvalidTransition)
	}
	c.apply(m, data)
	return nil
}

// apply snapshots the entry of m and writes data. Callers hold c.mu.
func (c *Cache) apply(m *Mutation, data []byte) {
	m.snapshot, m.existed = c.entries[m.key]
	c.write(m.key, data)
	c.pending[m.key] = append(c.pending[m.key], m)
	m.version = c.versions[m.key]
	m.state = StatePending

	c.logger.Debug("Optimistic write",
		zap.Stringer("key", m.key),
		zap.Int("pending", len(c.pending[m.key])))
}

// Commit resolves the mutation with the server's value. The value replaces
// the entry unless a later mutation owns it, in which case the later
// optimistic value stays. A nil authoritative value confirms the
// optimistic write as is. Aggregates of the key are invalidated.
func (m *Mutation) Commit(authoritative interface{}) error {
	var data []byte
	if authoritative != nil {
		var err error
		if data, err = json.Marshal(authoritative); err != nil {
			return fmt.Errorf("encoding authoritative %s: %w", m.key, err)
		}
	}

	c := m.cache
	c.mu.Lock()

	if m.state != StatePending {
		c.mu.Unlock()
		return fmt.Errorf("commit from %s: %w", m.state, ErrInvalidTransition)
	}

	later := c.resolve(m)
	switch {
	case data == nil:
		// The optimistic value, or the snapshot of the next mutation,
		// already reflects the confirmed state.
	case len(later) == 0:
		c.write(m.key, data)
	default:
		later[0].snapshot, later[0].existed = data, true
	}

	keys, subs := c.finishCommit(m, len(later) > 0)
	c.mu.Unlock()

	notify(keys, subs)
	return nil
}

// CommitPatch resolves the mutation by applying reconcile to the entry as
// it is now and to the snapshots of mutations applied after this one. An
// absent entry stays absent. A nil reconcile confirms the optimistic write.
// Aggregates of the key are invalidated even when reconcile fails.
func (m *Mutation) CommitPatch(reconcile Patch) error {
	c := m.cache
	c.mu.Lock()

	if m.state != StatePending {
		c.mu.Unlock()
		return fmt.Errorf("commit from %s: %w", m.state, ErrInvalidTransition)
	}

	later := c.resolve(m)
	var err error
	if reconcile != nil {
		err = c.patch(m.key, later, reconcile)
	}

	keys, subs := c.finishCommit(m, len(later) > 0)
	c.mu.Unlock()

	notify(keys, subs)
	if err != nil {
		return fmt.Errorf("reconciling %s: %w", m.key, err)
	}
	return nil
}

// finishCommit marks m committed and collects the aggregates to notify.
// Callers hold c.mu.
func (c *Cache) finishCommit(m *Mutation, superseded bool) ([]Key, []func(Key)) {
	m.state = StateCommitted
	delete(c.stale, m.key)
	c.logger.Debug("Mutation committed",
		zap.Stringer("key", m.key),
		zap.Bool("superseded", superseded))
	return c.invalidate(m.key)
}

// Rollback restores the entry to the snapshot taken when the mutation was
// applied, unless a later mutation owns the entry.
func (m *Mutation) Rollback() error {
	return m.RollbackPatch(nil)
}

// RollbackPatch undoes the mutation. When nothing has written the entry
// since the mutation was applied, the snapshot is restored byte for byte.
// Otherwise undo is applied to the entry as it is now and to the snapshots
// of later mutations. A nil undo falls back to Rollback's ownership rules.
func (m *Mutation) RollbackPatch(undo Patch) error {
	c := m.cache
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.state != StatePending {
		return fmt.Errorf("rollback from %s: %w", m.state, ErrInvalidTransition)
	}

	untouched := c.versions[m.key] == m.version
	later := c.resolve(m)
	m.state = StateRolledBack

	var err error
	switch {
	case untouched || (undo == nil && len(later) == 0):
		c.write(m.key, m.snapshot)
	case undo == nil:
		later[0].snapshot, later[0].existed = m.snapshot, m.existed
	default:
		err = c.patch(m.key, later, undo)
	}

	c.logger.Debug("Mutation rolled back",
		zap.Stringer("key", m.key),
		zap.Bool("exact", untouched),
		zap.Int("later", len(later)))
	if err != nil {
		return fmt.Errorf("undoing %s: %w", m.key, err)
	}
	return nil
}

// patch applies p to the entry for key, when present, and to the snapshots
// of later. Callers hold c.mu.
func (c *Cache) patch(key Key, later []*Mutation, p Patch) error {
	if data, ok := c.entries[key]; ok {
		next, err := p(data)
		if err != nil {
			return err
		}
		c.write(key, next)
	}
	for _, l := range later {
		if !l.existed {
			continue
		}
		next, err := p(l.snapshot)
		if err != nil {
			return err
		}
		l.snapshot, l.existed = next, next != nil
	}
	return nil
}

// resolve removes m from the pending queue of its key and returns the
// mutations applied after it, oldest first.
func (c *Cache) resolve(m *Mutation) []*Mutation {
	queue := c.pending[m.key]
	for i, p := range queue {
		if p != m {
			continue
		}
		later := append([]*Mutation(nil), queue[i+1:]...)
		rest := append(queue[:i:i], queue[i+1:]...)
		if len(rest) == 0 {
			delete(c.pending, m.key)
		} else {
			c.pending[m.key] = rest
		}
		return later
	}
	return nil
}

// write stores data for key, removing the entry when data is nil. Every
// write advances the version of key.
func (c *Cache) write(key Key, data []byte) {
	c.versions[key]++
	if data == nil {
		delete(c.entries, key)
		return
	}
	c.entries[key] = data
}
