package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/syllabus/pkg/core"
)

// Watch reports external changes to keys matching pattern. Writes made by
// this Storage are recognized by checksum and not reported. The channel is
// closed when ctx is cancelled.
func (s *Storage) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern: %q", pattern)
	}

	events := make(chan core.Event, s.config.EventBuffer)
	w := newWatchWorker(s, pattern, events)
	w.closeOnExit = true
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// Reconcile compares the directory against the checksum index and returns
// one event per key that changed behind our back. The index is updated so
// each change is reported once.
func (s *Storage) Reconcile(ctx context.Context, pattern string) ([]core.Event, error) {
	keys, err := s.Keys(ctx, pattern)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(keys))
	var events []core.Event
	for _, key := range keys {
		if ctx.Err() != nil {
			return events, ctx.Err()
		}
		seen[key] = true
		e, changed, err := s.detectChange(key)
		if err != nil {
			return events, err
		}
		if changed {
			events = append(events, e)
		}
	}

	for _, key := range s.cache.Keys() {
		if seen[key] || !matches(pattern, key) {
			continue
		}
		e, changed, err := s.detectChange(key)
		if err != nil {
			return events, err
		}
		if changed {
			events = append(events, e)
		}
	}

	return events, nil
}

// detectChange compares the current file for key with the index entry.
func (s *Storage) detectChange(key string) (core.Event, bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := time.Now()
	entry, known := s.cache.Get(key)

	data, err := os.ReadFile(s.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		if !known {
			return core.Event{}, false, nil
		}
		s.cache.Delete(key)
		s.persistIndex()
		return core.Event{Type: core.EventDelete, Key: key, Timestamp: now.UnixNano()}, true, nil
	}
	if err != nil {
		return core.Event{}, false, err
	}

	sum := checksum(data)
	if known && entry.Checksum == sum {
		return core.Event{}, false, nil
	}

	s.cache.Set(key, &indexEntry{Key: key, Checksum: sum, LastModified: now})
	s.persistIndex()

	typ := core.EventModify
	if !known {
		typ = core.EventCreate
	}
	return core.Event{Type: typ, Key: key, Timestamp: now.UnixNano()}, true, nil
}
