package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/git"
)

func newTestStorage(t *testing.T, cfg Config) *Storage {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = t.TempDir()
	}
	s := NewStorage(cfg)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, Config{AutoInit: true})

	if err := s.Save(ctx, "notes", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load(ctx, "notes")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("unexpected content: %s", got)
	}

	// Overwrite replaces the whole value.
	if err := s.Save(ctx, "notes", []byte(`[]`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, _ = s.Load(ctx, "notes")
	if string(got) != `[]` {
		t.Errorf("expected overwrite, got %s", got)
	}
}

func TestStorage_LoadMissing(t *testing.T) {
	s := newTestStorage(t, Config{AutoInit: true})

	_, err := s.Load(context.Background(), "absent")
	if !errors.Is(err, core.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestStorage_Remove(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, Config{AutoInit: true})

	if err := s.Save(ctx, "pdfs", []byte("[]")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Remove(ctx, "pdfs"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := s.Load(ctx, "pdfs"); !errors.Is(err, core.ErrKeyNotFound) {
		t.Errorf("expected key to be gone, got %v", err)
	}

	t.Run("Absent Key Is Not An Error", func(t *testing.T) {
		if err := s.Remove(ctx, "pdfs"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestStorage_InvalidKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, Config{AutoInit: true})

	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		if err := s.Save(ctx, key, []byte("x")); !errors.Is(err, core.ErrInvalidKey) {
			t.Errorf("Save(%q): expected ErrInvalidKey, got %v", key, err)
		}
		if _, err := s.Load(ctx, key); !errors.Is(err, core.ErrInvalidKey) {
			t.Errorf("Load(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestStorage_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "settings"), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	s := newTestStorage(t, Config{Path: dir, ReadOnly: true})

	if _, err := s.Load(ctx, "settings"); err != nil {
		t.Errorf("Load should work in read-only mode: %v", err)
	}
	if err := s.Save(ctx, "settings", []byte(`{"a":1}`)); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("expected ErrReadOnly on Save, got %v", err)
	}
	if err := s.Remove(ctx, "settings"); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("expected ErrReadOnly on Remove, got %v", err)
	}

	t.Run("Missing Directory Fails", func(t *testing.T) {
		s := NewStorage(Config{Path: filepath.Join(dir, "nope"), ReadOnly: true})
		if err := s.Initialize(ctx); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

func TestStorage_Keys(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, Config{AutoInit: true})

	for _, k := range []string{"notes", "pdfs", "syllabus", "syllabus.bak"} {
		if err := s.Save(ctx, k, []byte("[]")); err != nil {
			t.Fatalf("Save(%s) failed: %v", k, err)
		}
	}

	keys, err := s.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if strings.Join(keys, ",") != "notes,pdfs,syllabus,syllabus.bak" {
		t.Errorf("unexpected keys: %v", keys)
	}

	keys, err = s.Keys(ctx, "syllabus*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 keys for syllabus*, got %v", keys)
	}

	if _, err := s.Keys(ctx, "[unclosed"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestStorage_IndexSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := NewStorage(Config{Path: dir, AutoInit: true})
	if err := s.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "notes", []byte("[]")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := newTestStorage(t, Config{Path: dir})
	state := reopened.State().(StorageState)
	if state.IndexSize != 1 {
		t.Errorf("expected index size 1 after restart, got %d", state.IndexSize)
	}

	// Nothing changed on disk, so nothing to reconcile.
	events, err := reopened.Reconcile(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %v", events)
	}
}

func TestStorage_Reconcile(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, Config{AutoInit: true})

	if err := s.Save(ctx, "notes", []byte("[]")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "pdfs", []byte("[]")); err != nil {
		t.Fatal(err)
	}

	// Simulate another process.
	os.WriteFile(filepath.Join(s.Path, "notes"), []byte(`[{"id":"x"}]`), 0644)
	os.Remove(filepath.Join(s.Path, "pdfs"))
	os.WriteFile(filepath.Join(s.Path, "settings"), []byte(`{}`), 0644)

	events, err := s.Reconcile(ctx, "")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	got := make(map[string]core.EventType)
	for _, e := range events {
		got[e.Key] = e.Type
	}
	want := map[string]core.EventType{
		"notes":    core.EventModify,
		"pdfs":     core.EventDelete,
		"settings": core.EventCreate,
	}
	for k, typ := range want {
		if got[k] != typ {
			t.Errorf("%s: expected %s, got %q", k, typ, got[k])
		}
	}

	again, _ := s.Reconcile(ctx, "")
	if len(again) != 0 {
		t.Errorf("changes should be reported once, got %v", again)
	}
}

func TestStorage_Versioned(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	s := newTestStorage(t, Config{AutoInit: true, Versioned: true})

	ignore, err := os.ReadFile(filepath.Join(s.Path, ".gitignore"))
	if err != nil {
		t.Fatalf("expected .gitignore: %v", err)
	}
	if !strings.Contains(string(ignore), DefaultSystemDir+"/") {
		t.Errorf(".gitignore missing system dir: %s", ignore)
	}

	reason := context.WithValue(ctx, core.ChangeReasonKey, "feat(notes): add first note")
	if err := s.Save(reason, "notes", []byte("[]")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Remove(ctx, "notes"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	client := git.NewClient(s.Path, "", nil)
	log, err := client.Run("log", "--format=%s")
	if err != nil {
		t.Fatalf("git log failed: %v", err)
	}
	if !strings.Contains(log, "feat(notes): add first note") {
		t.Errorf("expected change reason in log, got:\n%s", log)
	}
	if !strings.Contains(log, "chore(store): remove notes") {
		t.Errorf("expected default remove message in log, got:\n%s", log)
	}

	if err := NewStorage(Config{Path: s.Path}).Sync(ctx); err == nil {
		t.Error("Sync without versioning should fail")
	}
}
