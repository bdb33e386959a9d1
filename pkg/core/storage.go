package core

import (
	"context"
	"regexp"
)

// Storage is the key-value persistence contract the stores are built on.
// Values are opaque bytes; the stores own serialization.
// No transactional guarantees are expected from implementations.
type Storage interface {
	// Load returns the raw value stored under key, or ErrKeyNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save overwrites the value stored under key.
	Save(ctx context.Context, key string, data []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Initialize ensures the underlying storage is ready (mkdir, schema, ping).
	Initialize(ctx context.Context) error
}

// Lister is implemented by storages that can enumerate their keys.
type Lister interface {
	// Keys returns the stored keys matching a doublestar pattern, sorted.
	// An empty pattern matches everything.
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Watchable is implemented by storages that can report external changes.
type Watchable interface {
	// Watch emits an Event for every key matching pattern that changes
	// outside of this process. The channel closes when ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Syncable is implemented by storages that synchronize with a remote.
type Syncable interface {
	// Sync synchronizes the local state with a remote source (e.g. git pull/push).
	Sync(ctx context.Context) error
}

// Closer is implemented by storages holding connections or handles.
type Closer interface {
	Close() error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

// ValidateKey reports whether key is usable by every adapter: a flat
// name made of letters, digits, dot, dash and underscore, not starting
// with a dot.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	return nil
}

type contextKey string

// ChangeReasonKey is the context key for passing a change reason (commit
// message) to versioned storages during Save/Remove.
const ChangeReasonKey contextKey = "change_reason"
