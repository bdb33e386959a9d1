package platform

import (
	"context"

	"github.com/aretw0/syllabus/pkg/session"
	"github.com/aretw0/syllabus/pkg/store"
)

// Open opens the storage described by uri and opts and returns a loaded
// session over it. The session owns the storage and closes it on Close.
//
//	s, err := platform.Open(ctx, "./data", platform.WithVersioning(true))
func Open(ctx context.Context, uri string, opts ...Option) (*session.Session, error) {
	storage, err := OpenStorage(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}

	s := session.New(storage, sessionOptions(newOptions(opts))...)
	if err := s.Load(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	return s, nil
}

func sessionOptions(o *options) []session.Option {
	var storeOpts []store.Option
	if o.logger != nil {
		storeOpts = append(storeOpts, store.WithLogger(o.logger))
	}
	if o.clock != nil {
		storeOpts = append(storeOpts, store.WithClock(o.clock))
	}
	if o.idGen != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(o.idGen))
	}

	opts := []session.Option{session.WithStoreOptions(storeOpts...)}
	if o.logger != nil {
		opts = append(opts, session.WithLogger(o.logger))
	}
	if o.onReload != nil {
		opts = append(opts, session.WithReloadHook(o.onReload))
	}
	if o.storage == nil {
		opts = append(opts, session.WithOwnedStorage())
	}
	return opts
}
