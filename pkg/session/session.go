// Package session owns one instance of every store over a single storage
// backend, from load to teardown.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/schedule"
	"github.com/aretw0/syllabus/pkg/store"
)

// ErrNotWatchable is returned by Watch when the storage cannot report
// external changes.
var ErrNotWatchable = errors.New("storage does not support watching")

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session is closed")

// Option configures a Session.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	storeOpts  []store.Option
	onReload   func(key string)
	closeStore bool
}

// WithLogger sets the session logger. Stores inherit it.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStoreOptions passes options to every store.
func WithStoreOptions(opts ...store.Option) Option {
	return func(c *config) {
		c.storeOpts = append(c.storeOpts, opts...)
	}
}

// WithReloadHook registers fn to run after a store reloads because its key
// changed outside this session.
func WithReloadHook(fn func(key string)) Option {
	return func(c *config) {
		c.onReload = fn
	}
}

// WithOwnedStorage makes Close also close the storage, if it is a core.Closer.
func WithOwnedStorage() Option {
	return func(c *config) {
		c.closeStore = true
	}
}

// Session bundles the syllabus, notes, PDF and settings stores.
type Session struct {
	storage core.Storage
	config  config
	logger  *slog.Logger

	syllabus *store.SyllabusStore
	notes    *store.NotesStore
	pdfs     *store.PDFStore
	settings *store.SettingsStore

	mu        sync.Mutex
	loaded    bool
	closed    bool
	watching  bool
	stopWatch context.CancelFunc
	watchDone chan struct{}
	tasks     []*schedule.Task
	reloads   int
	lastEvent *time.Time
}

// New builds a session over storage. Stores serve defaults until Load.
func New(storage core.Storage, opts ...Option) *Session {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	storeOpts := append([]store.Option{store.WithLogger(cfg.logger)}, cfg.storeOpts...)
	return &Session{
		storage:  storage,
		config:   cfg,
		logger:   cfg.logger,
		syllabus: store.NewSyllabusStore(storage, storeOpts...),
		notes:    store.NewNotesStore(storage, storeOpts...),
		pdfs:     store.NewPDFStore(storage, storeOpts...),
		settings: store.NewSettingsStore(storage, storeOpts...),
	}
}

// Load initializes every store concurrently. Corrupt data never fails
// Load; only cancellation does.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.syllabus.Load(gctx) })
	g.Go(func() error { return s.notes.Load(gctx) })
	g.Go(func() error { return s.pdfs.Load(gctx) })
	g.Go(func() error { return s.settings.Load(gctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()

	s.logger.Debug("session loaded",
		"semesters", len(s.syllabus.Semesters()),
		"notes", s.notes.Len(),
		"pdfs", s.pdfs.Len())
	return nil
}

// Syllabus returns the syllabus store.
func (s *Session) Syllabus() *store.SyllabusStore { return s.syllabus }

// Notes returns the notes store.
func (s *Session) Notes() *store.NotesStore { return s.notes }

// PDFs returns the PDF store.
func (s *Session) PDFs() *store.PDFStore { return s.pdfs }

// Settings returns the settings store.
func (s *Session) Settings() *store.SettingsStore { return s.settings }

// Storage returns the backend the session persists to.
func (s *Session) Storage() core.Storage { return s.storage }

// Flush retries the writes of stores whose last persist failed. Clean
// stores are not touched. Unlike mutations, Flush reports write failures.
func (s *Session) Flush(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.syllabus.Flush(gctx) })
	g.Go(func() error { return s.notes.Flush(gctx) })
	g.Go(func() error { return s.pdfs.Flush(gctx) })
	g.Go(func() error { return s.settings.Flush(gctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to flush session: %w", err)
	}
	return nil
}

// Every runs fn periodically until the session closes.
func (s *Session) Every(ctx context.Context, d time.Duration, fn func(ctx context.Context, now time.Time)) (*schedule.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	t := schedule.Every(ctx, d, fn)
	s.tasks = append(s.tasks, t)
	return t, nil
}

// Watch reloads a store whenever its key changes outside this session.
// It requires a core.Watchable storage and runs until ctx ends or Close.
func (s *Session) Watch(ctx context.Context) error {
	w, ok := s.storage.(core.Watchable)
	if !ok {
		return ErrNotWatchable
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.watching {
		s.mu.Unlock()
		return nil
	}
	watchCtx, cancel := context.WithCancel(ctx)
	events, err := w.Watch(watchCtx, "")
	if err != nil {
		s.mu.Unlock()
		cancel()
		return fmt.Errorf("failed to watch storage: %w", err)
	}
	done := make(chan struct{})
	s.watching = true
	s.stopWatch = cancel
	s.watchDone = done
	s.mu.Unlock()

	lifecycle.Go(watchCtx, func(ctx context.Context) error {
		defer close(done)
		defer s.setWatching(false)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				s.handleEvent(ctx, e)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("session watcher failed", "error", err)
	}))
	return nil
}

func (s *Session) handleEvent(ctx context.Context, e core.Event) {
	var reload func(context.Context) error
	switch e.Key {
	case store.KeySyllabus:
		reload = s.syllabus.Load
	case store.KeyNotes:
		reload = s.notes.Load
	case store.KeyPDFs:
		reload = s.pdfs.Load
	case store.KeyDepartment, store.KeyProgram:
		reload = s.settings.Load
	default:
		return
	}

	s.logger.Info("external change, reloading", "key", e.Key, "type", e.Type)
	if err := reload(ctx); err != nil {
		s.logger.Warn("reload interrupted", "key", e.Key, "error", err)
		return
	}

	now := time.Now()
	s.mu.Lock()
	s.reloads++
	s.lastEvent = &now
	hook := s.config.onReload
	s.mu.Unlock()

	if hook != nil {
		hook(e.Key)
	}
}

func (s *Session) setWatching(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watching = v
}

// Close stops the watcher and scheduled tasks, then flushes unsaved
// changes. The session cannot be used afterwards.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stop, done := s.stopWatch, s.watchDone
	tasks := s.tasks
	s.tasks = nil
	loaded := s.loaded
	s.mu.Unlock()

	if stop != nil {
		stop()
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	for _, t := range tasks {
		t.Stop()
	}

	var errs []error
	if loaded {
		if err := s.Flush(ctx); err != nil && !errors.Is(err, core.ErrReadOnly) {
			errs = append(errs, err)
		}
	}
	if s.config.closeStore {
		if c, ok := s.storage.(core.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// State is the introspection snapshot of a session.
type State struct {
	Loaded    bool       `json:"loaded"`
	Closed    bool       `json:"closed"`
	Watching  bool       `json:"watching"`
	Tasks     int        `json:"tasks"`
	Reloads   int        `json:"reloads"`
	LastEvent *time.Time `json:"last_event,omitempty"`
	Storage   any        `json:"storage,omitempty"`
	Stores    []any      `json:"stores"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	s.mu.Lock()
	st := State{
		Loaded:    s.loaded,
		Closed:    s.closed,
		Watching:  s.watching,
		Tasks:     len(s.tasks),
		Reloads:   s.reloads,
		LastEvent: s.lastEvent,
	}
	s.mu.Unlock()

	if in, ok := s.storage.(introspection.Introspectable); ok {
		st.Storage = in.State()
	}
	st.Stores = []any{s.syllabus.State(), s.notes.State(), s.pdfs.State(), s.settings.State()}
	return st
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "session"
}

var (
	_ introspection.Introspectable = (*Session)(nil)
	_ introspection.Component      = (*Session)(nil)
)
