package syllabus

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/syllabus/internal/platform"
	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/session"
)

// --- Types ---

type (
	Semester     = core.Semester
	Subject      = core.Subject
	Unit         = core.Unit
	Owner        = core.Owner
	Note         = core.Note
	PDFResource  = core.PDFResource
	NoteDraft    = core.NoteDraft
	PDFDraft     = core.PDFDraft
	NotePatch    = core.NotePatch
	PDFPatch     = core.PDFPatch
	SubjectPatch = core.SubjectPatch

	// Session bundles the syllabus, notes, PDF and settings stores.
	Session = session.Session
)

// Ptr returns a pointer to v, for filling patches.
func Ptr[T any](v T) *T { return core.Ptr(v) }

// --- Configuration ---

// Option defines a functional option for configuring a data set.
type Option = platform.Option

// WithAdapter selects the storage backend by name: fs, memory, sqlite or redis.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithStorage injects a custom storage adapter.
func WithStorage(s core.Storage) Option {
	return platform.WithStorage(s)
}

// WithLogger sets the logger for storage and stores.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithVersioning enables or disables git versioning of the data directory.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithAutoInit creates the data directory if missing.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithMustExist requires the data directory to exist already.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly opens the data set without write access.
func WithReadOnly(readOnly bool) Option {
	return platform.WithReadOnly(readOnly)
}

// WithForceTemp forces the use of the dev sandbox (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety toggles the sandbox used automatically under go run and go test.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithRedisURL sets the server for the redis adapter.
func WithRedisURL(url string) Option {
	return platform.WithRedisURL(url)
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithIDGenerator sets the generator for record identifiers.
func WithIDGenerator(gen func() string) Option {
	return platform.WithIDGenerator(gen)
}

// WithReloadHook is called after a store is reloaded from an external change.
func WithReloadHook(fn func(key string)) Option {
	return platform.WithReloadHook(fn)
}

// --- Factory ---

// Open opens the data set at uri and loads every store.
func Open(ctx context.Context, uri string, opts ...Option) (*Session, error) {
	return platform.Open(ctx, uri, opts...)
}

// Sync pulls and pushes a versioned data directory against its remote.
func Sync(ctx context.Context, uri string, opts ...Option) error {
	return platform.Sync(ctx, uri, opts...)
}
