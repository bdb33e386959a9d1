package core

import "errors"

// Common errors.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrInvalidKey  = errors.New("invalid storage key")
	ErrReadOnly    = errors.New("storage is in read-only mode")
)
