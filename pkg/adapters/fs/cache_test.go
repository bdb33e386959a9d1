package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_Load(t *testing.T) {
	t.Run("Starts Empty if File Missing", func(t *testing.T) {
		c := newCache(t.TempDir(), ".cache")

		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("Expected empty entries, got %d", c.Len())
		}
	})

	t.Run("Loads Valid JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".cache")
		os.MkdirAll(cacheDir, 0755)

		jsonContent := `{
			"version": 1,
			"entries": {
				"notes": {"key": "notes", "checksum": "abc"}
			}
		}`
		os.WriteFile(filepath.Join(cacheDir, "index.json"), []byte(jsonContent), 0644)

		c := newCache(tmpDir, ".cache")
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		entry, ok := c.Get("notes")
		if !ok {
			t.Fatal("Expected entry notes not found")
		}
		if entry.Checksum != "abc" {
			t.Errorf("Expected checksum 'abc', got '%s'", entry.Checksum)
		}
	})

	t.Run("Resets on Corrupted JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".cache")
		os.MkdirAll(cacheDir, 0755)
		os.WriteFile(filepath.Join(cacheDir, "index.json"), []byte("{not json"), 0644)

		c := newCache(tmpDir, ".cache")
		if err := c.Load(); err != nil {
			t.Fatalf("Load should self-heal, got: %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("Expected empty index after corruption, got %d", c.Len())
		}

		// Still usable.
		c.Set("notes", &indexEntry{Key: "notes", Checksum: "x"})
		if err := c.Save(); err != nil {
			t.Fatalf("Save after reset failed: %v", err)
		}
	})
}

func TestCache_SaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	c := newCache(tmpDir, ".cache")

	c.Set("notes", &indexEntry{Key: "notes", Checksum: "one", LastModified: time.Now()})
	c.Set("pdfs", &indexEntry{Key: "pdfs", Checksum: "two", LastModified: time.Now()})
	c.Delete("pdfs")
	c.Delete("unknown")

	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := newCache(tmpDir, ".cache")
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("Expected 1 entry, got %d", loaded.Len())
	}
	if e, _ := loaded.Get("notes"); e.Checksum != "one" {
		t.Errorf("Expected checksum 'one', got '%s'", e.Checksum)
	}
	if keys := loaded.Keys(); len(keys) != 1 || keys[0] != "notes" {
		t.Errorf("unexpected keys: %v", keys)
	}
}

func TestCache_SaveSkipsWhenClean(t *testing.T) {
	tmpDir := t.TempDir()
	c := newCache(tmpDir, ".cache")

	if err := c.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(c.Path); !os.IsNotExist(err) {
		t.Error("clean index should not be written")
	}
}
