// Package memory implements core.Storage on an in-process map. It is the
// adapter used by tests and by throwaway sessions.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/syllabus/pkg/core"
)

// ErrQuotaExceeded is returned by Save when write failures are injected.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Storage is a map-backed core.Storage.
type Storage struct {
	mu         sync.RWMutex
	data       map[string][]byte
	failWrites error
	writes     int
}

// NewStorage returns an empty Storage.
func NewStorage() *Storage {
	return &Storage{data: make(map[string][]byte)}
}

// Initialize is a no-op.
func (s *Storage) Initialize(ctx context.Context) error {
	return nil
}

// Load returns a copy of the value stored under key.
func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	if err := core.ValidateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save stores a copy of data under key.
func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites != nil {
		return fmt.Errorf("save %s: %w", key, s.failWrites)
	}
	s.data[key] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// Remove deletes key. An absent key is not an error.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites != nil {
		return fmt.Errorf("remove %s: %w", key, s.failWrites)
	}
	delete(s.data, key)
	return nil
}

// Keys lists stored keys matching a doublestar pattern, sorted.
func (s *Storage) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern: %q", pattern)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.data {
		if pattern != "" {
			if ok, _ := doublestar.Match(pattern, k); !ok {
				continue
			}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// FailWrites makes every subsequent Save and Remove fail with err.
// Passing nil restores normal behavior.
func (s *Storage) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = err
}

// Put seeds a raw value, bypassing failure injection and key validation.
func (s *Storage) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
}

// Has reports whether key is present.
func (s *Storage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Writes returns the number of successful saves.
func (s *Storage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"keys":        len(s.data),
		"writes":      s.writes,
		"fail_writes": s.failWrites != nil,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "memory-storage"
}

var (
	_ core.Storage = (*Storage)(nil)
	_ core.Lister  = (*Storage)(nil)
)
