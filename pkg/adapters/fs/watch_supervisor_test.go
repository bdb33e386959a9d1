package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/syllabus/pkg/core"
)

// A restarted watcher keeps reporting external edits to the notes blob and
// still suppresses the storage's own writes.
func TestWatcher_SupervisorRestartKeepsNotesEvents(t *testing.T) {
	const notesKey = "syllabus-notes"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newTestStorage(t, Config{AutoInit: true, SystemDir: ".syllabus", Debounce: 20 * time.Millisecond})
	require.NoError(t, s.Save(ctx, notesKey, []byte("[]")))

	events := make(chan core.Event, 8)
	created := make(chan *watchWorker, 2)

	sup := supervisor.New("notes-watcher", supervisor.StrategyOneForOne, supervisor.Spec{
		Name: "fs-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			w := newWatchWorker(s, notesKey, events)
			created <- w
			return w, nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      1,
			ResetDuration:   50 * time.Millisecond,
			MaxRestarts:     2,
			MaxDuration:     200 * time.Millisecond,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	})
	require.NoError(t, sup.Start(ctx))

	first := waitForWorker(t, created, "first")
	waitForWatcherInit(t, first)
	waitForWatcher(t, s, true)

	// The watcher's fsnotify handle dies under it.
	_ = first.watcher.Close()

	second := waitForWorker(t, created, "second")
	require.NotSame(t, first, second, "supervisor should build a fresh watcher")
	waitForWatcherInit(t, second)
	waitForWatcher(t, s, true)

	require.NoError(t, s.Save(ctx, notesKey, []byte(`[{"id":"self"}]`)))
	_, ok := nextEvent(t, events, 200*time.Millisecond)
	assert.False(t, ok, "own note writes stay silent after a restart")

	note := `[{"id":"n1","title":"From another tab","subjectCode":"BI 501","semesterId":1}]`
	require.NoError(t, os.WriteFile(filepath.Join(s.Path, notesKey), []byte(note), 0644))

	e, ok := nextEvent(t, events, 2*time.Second)
	require.True(t, ok, "expected an event for the notes key")
	assert.Equal(t, notesKey, e.Key)
	assert.Equal(t, core.EventModify, e.Type)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, sup.Stop(stopCtx))
}

func waitForWorker(t *testing.T, ch <-chan *watchWorker, label string) *watchWorker {
	t.Helper()

	select {
	case w := <-ch:
		return w
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for %s worker", label)
		return nil
	}
}

func waitForWatcherInit(t *testing.T, w *watchWorker) {
	t.Helper()

	require.Eventually(t, func() bool { return w.watcher != nil }, 2*time.Second, 10*time.Millisecond,
		"watcher was not initialized")
}

func waitForWatcher(t *testing.T, s *Storage, expected bool) {
	t.Helper()

	require.Eventually(t, func() bool {
		state, ok := s.State().(StorageState)
		return ok && state.WatcherActive == expected
	}, 2*time.Second, 10*time.Millisecond, "watcher state never became %v", expected)
}
