package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/syllabus/pkg/adapters/fs"
	"github.com/aretw0/syllabus/pkg/adapters/memory"
	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/store"
)

func TestSession_LoadAndUse(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStorage()
	s.Put(store.KeyDepartment, []byte("Department of Genomics"))

	sess := New(s)
	require.NoError(t, sess.Load(ctx))

	assert.Equal(t, "Department of Genomics", sess.Settings().DepartmentName())
	assert.Len(t, sess.Syllabus().Semesters(), 4)
	assert.Equal(t, 0, sess.Notes().Len())

	n := sess.Notes().Add(ctx, core.NoteDraft{Title: "T", SubjectCode: "BI 501", SemesterID: 1})
	require.NoError(t, sess.Close(ctx))

	reopened := New(s)
	require.NoError(t, reopened.Load(ctx))
	_, ok := reopened.Notes().Get(n.ID)
	assert.True(t, ok)

	assert.ErrorIs(t, sess.Load(ctx), ErrClosed)
	assert.NoError(t, sess.Close(ctx), "second Close is a no-op")
}

func TestSession_LoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, New(memory.NewStorage()).Load(ctx), context.Canceled)
}

func TestSession_FlushReportsFailures(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStorage()
	sess := New(s)
	require.NoError(t, sess.Load(ctx))

	s.FailWrites(memory.ErrQuotaExceeded)
	sess.Notes().Add(ctx, core.NoteDraft{Title: "unsaved", SubjectCode: "BI 501", SemesterID: 1})
	assert.ErrorIs(t, sess.Flush(ctx), memory.ErrQuotaExceeded)
	assert.ErrorIs(t, sess.Close(ctx), memory.ErrQuotaExceeded)
}

func TestSession_FlushRetriesFailedWrites(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStorage()
	sess := New(s)
	require.NoError(t, sess.Load(ctx))

	s.FailWrites(memory.ErrQuotaExceeded)
	n := sess.Notes().Add(ctx, core.NoteDraft{Title: "late", SubjectCode: "BI 501", SemesterID: 1})
	sess.Settings().SetProgramName(ctx, "M.Sc. Genomics")
	s.FailWrites(nil)
	require.NoError(t, sess.Close(ctx))

	reopened := New(s)
	require.NoError(t, reopened.Load(ctx))
	_, ok := reopened.Notes().Get(n.ID)
	assert.True(t, ok)
	assert.Equal(t, "M.Sc. Genomics", reopened.Settings().ProgramName())
	assert.False(t, s.Has(store.KeySyllabus), "untouched stores are not written")
}

// flakyStorage fails reads of one key.
type flakyStorage struct {
	*memory.Storage
	key string
	err error
}

func (f *flakyStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if key == f.key {
		return nil, f.err
	}
	return f.Storage.Load(ctx, key)
}

func TestSession_ReadErrorKeepsPersistedData(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStorage()

	seed := New(mem)
	require.NoError(t, seed.Load(ctx))
	seed.Notes().Add(ctx, core.NoteDraft{Title: "keep me", SubjectCode: "BI 501", SemesterID: 1})
	seed.Syllabus().AddUnit(ctx, 1, "BI 501", core.Unit{Title: "Kept unit"})
	require.NoError(t, seed.Close(ctx))

	before, err := mem.Load(ctx, store.KeyNotes)
	require.NoError(t, err)
	syllabusBefore, err := mem.Load(ctx, store.KeySyllabus)
	require.NoError(t, err)

	for _, key := range []string{store.KeyNotes, store.KeySyllabus} {
		t.Run(key, func(t *testing.T) {
			sess := New(&flakyStorage{Storage: mem, key: key, err: errors.New("i/o timeout")})
			require.NoError(t, sess.Load(ctx))
			sess.Notes().All()
			sess.Syllabus().Semesters()
			require.NoError(t, sess.Close(ctx))
		})
	}

	after, err := mem.Load(ctx, store.KeyNotes)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	syllabusAfter, err := mem.Load(ctx, store.KeySyllabus)
	require.NoError(t, err)
	assert.Equal(t, string(syllabusBefore), string(syllabusAfter))
}

func TestSession_ReadOnlyUseDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStorage()
	sess := New(s)
	require.NoError(t, sess.Load(ctx))

	sess.Syllabus().Semesters()
	sess.Notes().QueryByOwner("BI 501", 1)
	sess.Settings().DepartmentName()
	_ = sess.State()
	require.NoError(t, sess.Close(ctx))

	assert.Equal(t, 0, s.Writes())
	assert.False(t, s.Has(store.KeyDepartment))
	assert.False(t, s.Has(store.KeyProgram))
}

func TestSession_CloseWithoutLoadDoesNotWrite(t *testing.T) {
	s := memory.NewStorage()
	sess := New(s)
	require.NoError(t, sess.Close(context.Background()))
	assert.Equal(t, 0, s.Writes())
}

func TestSession_WatchRequiresWatchable(t *testing.T) {
	sess := New(memory.NewStorage())
	assert.ErrorIs(t, sess.Watch(context.Background()), ErrNotWatchable)
}

func TestSession_EveryStopsOnClose(t *testing.T) {
	ctx := context.Background()
	sess := New(memory.NewStorage())

	ticks := make(chan time.Time, 100)
	task, err := sess.Every(ctx, 5*time.Millisecond, func(ctx context.Context, now time.Time) {
		ticks <- now
	})
	require.NoError(t, err)

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("no tick")
	}
	assert.Equal(t, 1, sess.State().(State).Tasks)

	require.NoError(t, sess.Close(ctx))
	select {
	case <-task.Done():
	default:
		t.Fatal("task still running after Close")
	}

	_, err = sess.Every(ctx, time.Second, func(context.Context, time.Time) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSession_WatchReloadsExternalChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	storage := fs.NewStorage(fs.Config{Path: dir, AutoInit: true, Debounce: 20 * time.Millisecond})
	require.NoError(t, storage.Initialize(ctx))

	reloaded := make(chan string, 10)
	sess := New(storage, WithOwnedStorage(), WithReloadHook(func(key string) { reloaded <- key }))
	require.NoError(t, sess.Load(ctx))
	require.NoError(t, sess.Watch(ctx))

	deadline := time.Now().Add(2 * time.Second)
	for !sess.State().(State).Watching && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	// Own writes do not trigger reloads.
	sess.Settings().SetProgramName(ctx, "Mine")

	// Another process (or tab) edits the program name.
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.KeyProgram), []byte("Theirs"), 0644))

	select {
	case key := <-reloaded:
		assert.Equal(t, store.KeyProgram, key)
	case <-time.After(3 * time.Second):
		t.Fatal("session did not reload")
	}
	assert.Equal(t, "Theirs", sess.Settings().ProgramName())

	st := sess.State().(State)
	assert.Equal(t, 1, st.Reloads)
	assert.NotNil(t, st.Storage)

	require.NoError(t, sess.Close(context.Background()))
	assert.False(t, sess.State().(State).Watching)
}
