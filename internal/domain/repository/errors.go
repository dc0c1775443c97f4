package repository

import "errors"

var (
	// ErrNotFound is returned when a write targets a row that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write collides with a unique value
	// other than the one the operation deduplicates on.
	ErrConflict = errors.New("record conflicts with an existing one")
)
