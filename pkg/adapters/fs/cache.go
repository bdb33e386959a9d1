package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// indexEntry records what this process last wrote for a key.
type indexEntry struct {
	Key          string    `json:"key"`
	Checksum     string    `json:"checksum"`
	LastModified time.Time `json:"lastModified"`
}

// index represents the persistent cache state.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"`
	dirty   bool
	mu      sync.RWMutex
}

// cache manages the loading, updating, and saving of the index.
// The watcher compares file checksums against it to drop self-writes.
type cache struct {
	Path  string // Path to .syllabus/index.json
	index *index
}

func newCache(dataPath, systemDir string) *cache {
	return &cache{
		Path: filepath.Join(dataPath, systemDir, "index.json"),
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the index from disk. Missing or corrupted indexes start empty.
func (c *cache) Load() error {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	if err := json.Unmarshal(data, c.index); err != nil || c.index.Entries == nil {
		c.index.Entries = make(map[string]*indexEntry)
	}

	c.index.dirty = false
	return nil
}

// Save persists the index if it changed since the last save.
func (c *cache) Save() error {
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.index.mu.RUnlock()

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}

	if err := writeFileAtomic(c.Path, data, 0644); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()

	return nil
}

// Get returns the entry for key, if any.
func (c *cache) Get(key string) (*indexEntry, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[key]
	return entry, ok
}

// Set updates an entry.
func (c *cache) Set(key string, entry *indexEntry) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.Entries[key] = entry
	c.index.dirty = true
}

// Delete removes a single entry.
func (c *cache) Delete(key string) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	if _, ok := c.index.Entries[key]; ok {
		delete(c.index.Entries, key)
		c.index.dirty = true
	}
}

// Len returns the number of entries.
func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}

// Keys returns the indexed keys.
func (c *cache) Keys() []string {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	keys := make([]string, 0, len(c.index.Entries))
	for k := range c.index.Entries {
		keys = append(keys, k)
	}
	return keys
}
