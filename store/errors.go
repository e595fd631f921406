package store

import "errors"

var (
	// ErrHeaderNotFound is returned when a header update is not found.
	ErrHeaderNotFound = errors.New("header update not found")

	// ErrEmptyStore is returned when the proof index is queried on an empty
	// store.
	ErrEmptyStore = errors.New("proof store is empty")
)
