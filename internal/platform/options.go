package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/syllabus/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterMemory = "memory"
	AdapterSQLite = "sqlite"
	AdapterRedis  = "redis"
)

// Option defines a functional option for configuring a syllabus data set.
type Option func(*options)

type options struct {
	storage      core.Storage
	adapter      string
	logger       *slog.Logger
	versioning   *bool // nil means detect from the data directory
	autoInit     bool
	mustExist    bool
	readOnly     bool
	forceTemp    bool
	devSafety    bool
	systemDir    string
	eventBuffer  int
	debounce     time.Duration
	redisURL     string
	redisPrefix  string
	errorHandler func(error)
	clock        func() time.Time
	idGen        func() string
	onReload     func(key string)
}

func defaultOptions() *options {
	return &options{
		adapter:   AdapterFS,
		autoInit:  true,
		devSafety: true,
	}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithStorage injects a ready-made storage, bypassing the adapter switch.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithAdapter selects the storage backend: "fs" (default), "memory",
// "sqlite" or "redis".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithLogger sets the logger passed to storage and stores.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithVersioning forces git versioning on or off for the fs adapter.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.versioning = &enabled
	}
}

// WithAutoInit creates the data directory (and git repository, when
// versioned) if missing.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithMustExist fails Open if the data directory is missing.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return func(o *options) {
		o.readOnly = readOnly
	}
}

// WithForceTemp re-roots the data path into the dev sandbox regardless
// of how the process was started.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety toggles the automatic sandbox used under `go run` and
// `go test`. Enabled by default.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithSystemDir overrides the hidden directory holding the fs index.
func WithSystemDir(dir string) Option {
	return func(o *options) {
		o.systemDir = dir
	}
}

// WithEventBuffer sets the watch channel capacity.
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithDebounce sets the quiet period before a file change is reported.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithWatcherErrorHandler receives runtime errors from the fs watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithRedisURL sets the server for the redis adapter. When the URI given
// to Open is a redis:// URL it is used directly.
func WithRedisURL(url string) Option {
	return func(o *options) {
		o.redisURL = url
	}
}

// WithRedisPrefix namespaces keys on a shared redis database.
func WithRedisPrefix(prefix string) Option {
	return func(o *options) {
		o.redisPrefix = prefix
	}
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithIDGenerator sets the generator for record identifiers.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) {
		o.idGen = gen
	}
}

// WithReloadHook is called after a session reloads a store because its
// key changed outside the process.
func WithReloadHook(fn func(key string)) Option {
	return func(o *options) {
		o.onReload = fn
	}
}
