package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/syllabus/pkg/adapters/fs"
	"github.com/aretw0/syllabus/pkg/adapters/memory"
	"github.com/aretw0/syllabus/pkg/adapters/redis"
	"github.com/aretw0/syllabus/pkg/adapters/sqlite"
	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/git"
)

// OpenStorage builds and initializes the storage selected by the options.
// The uri is adapter specific: a directory for fs, a directory or .db file
// for sqlite, a redis:// URL for redis. It is ignored by memory.
func OpenStorage(ctx context.Context, uri string, opts ...Option) (core.Storage, error) {
	o := newOptions(opts)
	storage, err := buildStorage(uri, o)
	if err != nil {
		return nil, err
	}
	if err := storage.Initialize(ctx); err != nil {
		if c, ok := storage.(core.Closer); ok {
			_ = c.Close()
		}
		return nil, fmt.Errorf("failed to initialize %s storage: %w", o.adapter, err)
	}
	return storage, nil
}

func buildStorage(uri string, o *options) (core.Storage, error) {
	if o.storage != nil {
		return o.storage, nil
	}

	adapter := o.adapter
	if strings.HasPrefix(uri, "redis://") || strings.HasPrefix(uri, "rediss://") {
		adapter = AdapterRedis
	}

	switch adapter {
	case AdapterFS, "":
		return newFS(uri, o), nil
	case AdapterMemory:
		return memory.NewStorage(), nil
	case AdapterSQLite:
		return sqlite.NewStorage(sqlite.Config{
			Path:     resolvePath(uri, o),
			ReadOnly: o.readOnly,
			Logger:   o.logger,
		}), nil
	case AdapterRedis:
		url := o.redisURL
		if strings.Contains(uri, "://") {
			url = uri
		}
		if url == "" {
			return nil, fmt.Errorf("redis adapter requires a URL")
		}
		return redis.NewStorage(redis.Config{
			URL:      url,
			Prefix:   o.redisPrefix,
			ReadOnly: o.readOnly,
			Logger:   o.logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", adapter)
	}
}

// resolvePath applies dev safety to a local data path.
func resolvePath(uri string, o *options) string {
	useTemp := o.forceTemp || (o.devSafety && IsDevRun())
	resolved := ResolveDataPath(uri, useTemp)
	if useTemp && o.logger != nil && resolved != filepath.Clean(uri) {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", uri, "resolved_path", resolved)
	}
	return resolved
}

func newFS(uri string, o *options) *fs.Storage {
	path := resolvePath(uri, o)

	versioned := false
	if o.versioning != nil {
		versioned = *o.versioning
	} else if _, err := os.Stat(filepath.Join(path, ".git")); err == nil && git.IsInstalled() {
		// An existing repository opts in without asking.
		versioned = true
	}

	if o.logger != nil && o.versioning == nil {
		o.logger.Debug("auto-detected versioning", "path", path, "versioned", versioned)
	}

	return fs.NewStorage(fs.Config{
		Path:         path,
		AutoInit:     o.autoInit,
		Versioned:    versioned,
		MustExist:    o.mustExist || !o.autoInit,
		ReadOnly:     o.readOnly,
		Logger:       o.logger,
		SystemDir:    o.systemDir,
		EventBuffer:  o.eventBuffer,
		Debounce:     o.debounce,
		ErrorHandler: o.errorHandler,
	})
}

// Sync pulls and pushes the data set at uri against its git remote.
func Sync(ctx context.Context, uri string, opts ...Option) error {
	opts = append(opts, WithMustExist(true))
	storage, err := OpenStorage(ctx, uri, opts...)
	if err != nil {
		return err
	}
	if c, ok := storage.(core.Closer); ok {
		defer c.Close()
	}

	syncable, ok := storage.(core.Syncable)
	if !ok {
		return fmt.Errorf("storage does not support synchronization")
	}
	return syncable.Sync(ctx)
}
