package storage

import "errors"

// Storage errors for write-once interval stores.
var (
	// ErrDuplicateKey is returned when attempting to insert a record
	// whose natural key already exists. Interval records are never updated.
	ErrDuplicateKey = errors.New("duplicate key: interval records are write-once")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
