package core

import "errors"

var (
	// ErrStorage wraps any store failure other than a missing object.
	ErrStorage = errors.New("storage error")

	// ErrConflict is returned when an append kept losing version races
	// and ran out of attempts.
	ErrConflict = errors.New("dataset changed concurrently")

	// ErrMalformedData is returned when the stored CSV cannot be read as a
	// person dataset (missing columns, ragged rows, non-numeric cells).
	ErrMalformedData = errors.New("malformed dataset")
)
