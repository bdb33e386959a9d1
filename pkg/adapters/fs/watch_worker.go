package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/syllabus/pkg/core"
)

type watchWorker struct {
	*worker.BaseWorker
	storage   *Storage
	pattern   string
	events    chan core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc

	// closeOnExit hands ownership of events to this worker. Supervised
	// workers share one channel across restarts and leave it open.
	closeOnExit bool
}

func newWatchWorker(storage *Storage, pattern string, events chan core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		storage:    storage,
		pattern:    pattern,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(w.storage.Path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.storage.Path, err)
	}

	if w.storage.config.Versioned {
		_ = watcher.Add(filepath.Join(w.storage.Path, ".git"))
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.storage.config.Debounce)
	w.storage.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"pattern":           w.pattern,
		}
	})
}

// handleGitLockEvent processes .git/index.lock events (git operations pause/resume).
func (w *watchWorker) handleGitLockEvent(event fsnotify.Event, gitLocked bool) (handled bool, locked bool) {
	if filepath.Base(event.Name) != "index.lock" || filepath.Base(filepath.Dir(event.Name)) != ".git" {
		return false, gitLocked
	}

	logger := w.storage.config.Logger
	switch {
	case event.Has(fsnotify.Create):
		if logger != nil {
			logger.Debug("git operations detected, pausing watcher")
		}
		return true, true
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if logger != nil {
			logger.Debug("git operations finished, reconciling")
		}
		return true, false
	}
	return true, gitLocked
}

// reconcileAfterGitUnlock emits whatever changed while git held the lock.
func (w *watchWorker) reconcileAfterGitUnlock(ctx context.Context) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		events, err := w.storage.Reconcile(ctx, w.pattern)
		if err != nil {
			if w.storage.config.Logger != nil {
				w.storage.config.Logger.Error("reconcile failed", "error", err)
			}
			return err
		}
		for _, e := range events {
			w.send(ctx, e)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		if w.storage.config.ErrorHandler != nil {
			w.storage.config.ErrorHandler(fmt.Errorf("reconcile panic: %w", err))
		} else if w.storage.config.Logger != nil {
			w.storage.config.Logger.Error("reconcile panic", "error", err)
		}
	}))
}

// processFilesystemEvent filters an fsnotify event down to a key and
// schedules a debounced change check for it.
func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}

	key := filepath.Base(event.Name)
	if filepath.Dir(event.Name) != filepath.Clean(w.storage.Path) || w.storage.isInternal(key) {
		return false
	}
	if !matches(w.pattern, key) {
		return false
	}

	if w.storage.config.Logger != nil {
		w.storage.config.Logger.Debug("event received", "key", key, "op", event.Op.String())
	}

	w.debouncer.add(key, func() {
		e, changed, err := w.storage.detectChange(key)
		if err != nil {
			w.handleWatcherError(fmt.Errorf("failed to inspect %s: %w", key, err))
			return
		}
		if changed {
			w.send(ctx, e)
		}
	})
	return true
}

// send delivers an event, tolerating shutdown races on the channel.
func (w *watchWorker) send(ctx context.Context, e core.Event) {
	defer func() {
		_ = recover()
	}()
	select {
	case w.events <- e:
	case <-ctx.Done():
	}
}

func (w *watchWorker) handleWatcherError(err error) {
	if w.storage.config.Logger != nil {
		w.storage.config.Logger.Error("fsnotify error", "error", err)
	}
	if w.storage.config.ErrorHandler != nil {
		w.storage.config.ErrorHandler(err)
	}
}

// run is the main event loop.
func (w *watchWorker) run(ctx context.Context) (err error) {
	if w.closeOnExit {
		defer close(w.events)
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			logger := w.storage.config.Logger
			if logger == nil {
				return
			}
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer w.storage.setWatcherActive(false)
	defer w.watcher.Close()

	err = w.mainEventLoop(ctx)

	// Timers must drain before the deferred close of the events channel.
	w.debouncer.stopAndWait(5 * time.Second)

	return err
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	gitLocked := false
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}

			if handled, locked := w.handleGitLockEvent(event, gitLocked); handled {
				wasLocked := gitLocked
				gitLocked = locked
				if wasLocked && !gitLocked {
					w.reconcileAfterGitUnlock(ctx)
				}
				continue
			}

			if gitLocked {
				continue
			}

			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.handleWatcherError(wErr)
		}
	}
}
