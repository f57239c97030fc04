package store

import "errors"

var (
	// ErrConflict is returned when an insert collides with an existing natural key.
	ErrConflict = errors.New("natural key conflict")

	// ErrNotFound is returned when an update matches no row.
	ErrNotFound = errors.New("row not found")

	// ErrUnresolved is returned when a row references a carrier, antenna or
	// network type that does not exist.
	ErrUnresolved = errors.New("unresolved reference")
)
