package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would overwrite a finalized record.
	ErrConflict = errors.New("conflict")
)
