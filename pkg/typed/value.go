// Package typed provides type-safe access to values kept in a core.Storage.
//
// A Value[T] binds one storage key to a Go type and a Codec. Loading
// distinguishes three outcomes: the key is absent, the bytes decode, or
// they are corrupt (ErrDecode).
package typed

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/syllabus/pkg/core"
)

// ErrDecode marks stored bytes that could not be decoded into the target type.
var ErrDecode = errors.New("stored value could not be decoded")

// Value is a typed view of a single storage key.
type Value[T any] struct {
	storage core.Storage
	key     string
	codec   Codec
}

// Option configures a Value.
type Option func(*options)

type options struct {
	codec Codec
}

// WithCodec selects the codec. The default is JSON.
func WithCodec(c Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// NewValue binds key in storage to type T.
func NewValue[T any](storage core.Storage, key string, opts ...Option) *Value[T] {
	o := options{codec: JSON}
	for _, opt := range opts {
		opt(&o)
	}
	return &Value[T]{storage: storage, key: key, codec: o.codec}
}

// Key returns the storage key.
func (v *Value[T]) Key() string {
	return v.key
}

// Load reads and decodes the value. An absent key returns found=false and
// no error. Corrupt bytes return found=true and an error wrapping ErrDecode.
func (v *Value[T]) Load(ctx context.Context) (value T, found bool, err error) {
	data, err := v.storage.Load(ctx, v.key)
	if errors.Is(err, core.ErrKeyNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, err
	}

	if err := v.codec.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, true, fmt.Errorf("%w: %s (%s): %v", ErrDecode, v.key, v.codec.Name(), err)
	}
	return value, true, nil
}

// Save encodes value and writes it under the key.
func (v *Value[T]) Save(ctx context.Context, value T) error {
	data, err := v.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", v.key, err)
	}
	return v.storage.Save(ctx, v.key, data)
}

// Remove deletes the key.
func (v *Value[T]) Remove(ctx context.Context) error {
	return v.storage.Remove(ctx, v.key)
}
