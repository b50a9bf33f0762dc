// ABOUTME: Error definitions for the document diff service
// ABOUTME: Builder errors from fielddiff are wrapped, not replaced

package docdiff

import "errors"

var (
	// ErrInvalidInput is returned when a document export cannot be parsed.
	ErrInvalidInput = errors.New("invalid document export")

	// ErrNoSnapshotSource is returned when versions are diffed without a store.
	ErrNoSnapshotSource = errors.New("no snapshot source configured")
)
