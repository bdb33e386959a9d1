// Package fs implements core.Storage on a local directory: one file per
// key, written atomically, optionally versioned with git.
package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/git"
)

// DefaultSystemDir holds the checksum index and is ignored by git.
const DefaultSystemDir = ".syllabus"

// Config holds the configuration for the filesystem storage.
type Config struct {
	Path         string
	AutoInit     bool
	Versioned    bool // commit every write to git
	MustExist    bool
	ReadOnly     bool
	Logger       *slog.Logger
	SystemDir    string      // e.g. ".syllabus"
	EventBuffer  int         // watch channel size, 0 means 100
	Debounce     time.Duration
	ErrorHandler func(error) // receives watcher runtime errors
}

// Storage implements core.Storage using the filesystem and (optionally) git.
type Storage struct {
	Path   string
	git    *git.Client
	cache  *cache
	config Config

	writeMu sync.Mutex

	mu            sync.RWMutex
	watcherActive bool
	lastWrite     *time.Time
}

// NewStorage creates a new filesystem-backed storage. It does no I/O
// until Initialize is called.
func NewStorage(config Config) *Storage {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 100
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	return &Storage{
		Path:   config.Path,
		git:    git.NewClient(config.Path, config.SystemDir+".lock", config.Logger),
		config: config,
		cache:  newCache(config.Path, config.SystemDir),
	}
}

// Initialize prepares the directory (mkdir, git init) and loads the index.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", s.Path)
		}
	} else {
		if err := os.MkdirAll(s.Path, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if err := s.cache.Load(); err != nil {
		return err
	}

	if !s.config.Versioned || s.config.ReadOnly {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !s.git.IsRepo() {
		if !s.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", s.Path)
		}
		if err := s.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	mod, err := s.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}

	if mod && wasNewRepo {
		if err := s.git.Add(".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		msg := git.FormatChangeReason(git.CommitTypeChore, "", fmt.Sprintf("configure %s ignore", s.config.SystemDir), "")
		if err := s.git.Commit(msg); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}

	return nil
}

func (s *Storage) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(s.Path, ".gitignore")
	entries := []string{s.config.SystemDir + "/", s.config.SystemDir + ".lock"}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(strings.Join(missing, "\n") + "\n"); err != nil {
		return false, err
	}

	return true, nil
}

// Load reads the file backing key.
func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	if err := core.ValidateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Save writes data atomically and, when versioned, commits it.
//
// Workflow:
//  1. Validate key and refuse in read-only mode.
//  2. Record the checksum so the watcher recognizes our own write.
//  3. Write atomically (temp file + rename).
//  4. (If versioned) 'git add' and 'git commit' with the context's change reason.
func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.config.Versioned {
		unlock, err := s.git.Lock()
		if err != nil {
			return err
		}
		defer unlock()
	}

	s.cache.Set(key, &indexEntry{Key: key, Checksum: checksum(data), LastModified: time.Now()})

	if err := writeFileAtomic(s.filename(key), data, 0644); err != nil {
		s.cache.Delete(key)
		return err
	}

	if s.config.Logger != nil {
		s.config.Logger.Debug("saved key", "key", key, "bytes", len(data))
	}

	s.recordWrite()
	s.persistIndex()

	if !s.config.Versioned {
		return nil
	}

	if err := s.git.Add(key); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}
	return s.git.Commit(changeReason(ctx, key, "update"))
}

// Remove deletes the file backing key. An absent key is not an error.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.config.Versioned {
		unlock, err := s.git.Lock()
		if err != nil {
			return err
		}
		defer unlock()
	}

	s.cache.Delete(key)

	err := os.Remove(s.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	s.recordWrite()
	s.persistIndex()

	if !s.config.Versioned {
		return nil
	}

	if err := s.git.Rm(key); err != nil {
		return fmt.Errorf("failed to git rm: %w", err)
	}
	return s.git.Commit(changeReason(ctx, key, "remove"))
}

// Keys lists the stored keys matching a doublestar pattern.
func (s *Storage) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern: %q", pattern)
	}

	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.Path, err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() || s.isInternal(e.Name()) {
			continue
		}
		if !matches(pattern, e.Name()) {
			continue
		}
		keys = append(keys, e.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

// Sync synchronizes the directory with its git remote.
func (s *Storage) Sync(ctx context.Context) error {
	if !s.config.Versioned {
		return fmt.Errorf("cannot sync without versioning")
	}
	if !s.git.IsRepo() {
		return fmt.Errorf("path is not a git repository: %s", s.Path)
	}

	unlock, err := s.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	return s.git.Sync()
}

// Close persists the checksum index.
func (s *Storage) Close() error {
	if s.config.ReadOnly {
		return nil
	}
	return s.cache.Save()
}

func (s *Storage) filename(key string) string {
	return filepath.Join(s.Path, key)
}

// isInternal reports whether a directory entry belongs to the storage
// machinery rather than to a key.
func (s *Storage) isInternal(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, TempFilePrefix) ||
		name == s.config.SystemDir+".lock" ||
		core.ValidateKey(name) != nil
}

func (s *Storage) persistIndex() {
	if err := s.cache.Save(); err != nil && s.config.Logger != nil {
		s.config.Logger.Warn("failed to persist index", "error", err)
	}
}

func changeReason(ctx context.Context, key, verb string) string {
	if msg, ok := ctx.Value(core.ChangeReasonKey).(string); ok && msg != "" {
		return git.AppendFooter(msg)
	}
	return git.FormatChangeReason(git.CommitTypeChore, "store", fmt.Sprintf("%s %s", verb, key), "")
}

func matches(pattern, key string) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.Match(pattern, key)
	return err == nil && ok
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
