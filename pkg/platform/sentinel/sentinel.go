// Package sentinel holds the storage-level facts stores report. Services
// translate them into domain errors; handlers never see them directly.
package sentinel

import "errors"

var (
	// ErrNotFound means the record does not exist or has expired.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a record with the same key already exists.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable means the backing store could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
