package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/typed"
)

// accessors tells a Collection how to reach the identity, owner and
// timestamps of its entity type.
type accessors[T any] struct {
	id      func(*T) *string
	owner   func(T) core.Owner
	created func(*T) *time.Time
	updated func(*T) *time.Time
}

// Collection is an ordered, id-addressed list of entities persisted as a
// single blob. Every mutation rewrites the whole blob. Persistence
// failures are logged and never undo the in-memory change; the collection
// stays dirty until a later write succeeds.
type Collection[T any] struct {
	name  string
	value *typed.Value[[]T]
	acc   accessors[T]
	opts  options

	mu     sync.RWMutex
	items  []T
	loaded bool
	dirty  bool
}

func newCollection[T any](storage core.Storage, name, key string, acc accessors[T], opts []Option) *Collection[T] {
	return &Collection[T]{
		name:  name,
		value: typed.NewValue[[]T](storage, key),
		acc:   acc,
		opts:  newOptions(opts),
		items: []T{},
	}
}

// Load reads the persisted collection. Corrupt data is removed from storage
// and the collection starts empty. Only a cancelled ctx is reported.
func (c *Collection[T]) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	items, found, err := c.value.Load(ctx)
	switch {
	case errors.Is(err, typed.ErrDecode):
		c.opts.logger.Warn("discarding corrupt collection", "store", c.name, "key", c.value.Key(), "error", err)
		if rmErr := c.value.Remove(ctx); rmErr != nil {
			c.opts.logger.Error("failed to clear corrupt key", "store", c.name, "key", c.value.Key(), "error", rmErr)
		}
		items = nil
	case err != nil:
		c.opts.logger.Error("failed to load collection", "store", c.name, "key", c.value.Key(), "error", err)
		items = nil
	case !found:
		c.opts.logger.Debug("no persisted collection", "store", c.name)
	}

	if items == nil {
		items = []T{}
	}

	c.mu.Lock()
	c.items = items
	c.loaded = true
	c.dirty = false
	c.mu.Unlock()
	return nil
}

// Get returns the entity with id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.items {
		if *c.acc.id(&c.items[i]) == id {
			return c.items[i], true
		}
	}
	var zero T
	return zero, false
}

// All returns a copy of the collection in insertion order.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// QueryByOwner returns the entities attached to (subjectCode, semesterID),
// in insertion order.
func (c *Collection[T]) QueryByOwner(subjectCode string, semesterID int) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	want := core.Owner{SubjectCode: subjectCode, SemesterID: semesterID}
	out := []T{}
	for _, item := range c.items {
		if c.acc.owner(item) == want {
			out = append(out, item)
		}
	}
	return out
}

// CountByOwner groups entity counts by owner.
func (c *Collection[T]) CountByOwner() map[core.Owner]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[core.Owner]int)
	for _, item := range c.items {
		counts[c.acc.owner(item)]++
	}
	return counts
}

// Delete removes the entity with id. A miss changes nothing and reports false.
func (c *Collection[T]) Delete(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}

	next := make([]T, 0, len(c.items)-1)
	next = append(next, c.items[:idx]...)
	next = append(next, c.items[idx+1:]...)
	c.items = next

	c.persist(withReason(ctx, "chore", c.name, "delete "+id))
	return true
}

// Flush writes changes that have not reached storage yet and reports
// failures. A clean collection is left alone, so data that failed to load
// is never overwritten by the empty fallback.
func (c *Collection[T]) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}
	if err := c.value.Save(ctx, c.items); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Dirty reports whether the collection holds changes that failed to persist.
func (c *Collection[T]) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// Loaded reports whether Load has run.
func (c *Collection[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// insert stamps a new entity and appends it.
func (c *Collection[T]) insert(ctx context.Context, item T, reason string) T {
	now := c.opts.now()
	*c.acc.id(&item) = c.opts.newID()
	*c.acc.created(&item) = now
	*c.acc.updated(&item) = now

	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]T, len(c.items), len(c.items)+1)
	copy(next, c.items)
	c.items = append(next, item)

	c.persist(withReason(ctx, "feat", c.name, reason))
	return item
}

// update applies fn to a copy of the entity with id and swaps it in.
func (c *Collection[T]) update(ctx context.Context, id string, fn func(*T)) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		var zero T
		return zero, false
	}

	item := c.items[idx]
	created := *c.acc.created(&item)
	fn(&item)

	*c.acc.id(&item) = id
	*c.acc.created(&item) = created
	now := c.opts.now()
	if prev := *c.acc.updated(&c.items[idx]); now.Before(prev) {
		now = prev
	}
	*c.acc.updated(&item) = now

	next := make([]T, len(c.items))
	copy(next, c.items)
	next[idx] = item
	c.items = next

	c.persist(withReason(ctx, "docs", c.name, "update "+id))
	return item, true
}

func (c *Collection[T]) indexOf(id string) int {
	for i := range c.items {
		if *c.acc.id(&c.items[i]) == id {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (c *Collection[T]) persist(ctx context.Context) {
	c.dirty = true
	if err := c.value.Save(ctx, c.items); err != nil {
		c.opts.logger.Error("failed to persist collection", "store", c.name, "key", c.value.Key(), "error", err)
		return
	}
	c.dirty = false
}
