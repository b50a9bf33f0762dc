// ABOUTME: Error definitions for the snapshot store
// ABOUTME: Sentinel errors callers can match with errors.Is

package snapshot

import "errors"

var (
	// ErrNotFound is returned when no snapshot matches a lookup.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalidSnapshot is returned when a snapshot misses its ids or content.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrClosed is returned when the store is used after Close.
	ErrClosed = errors.New("snapshot store closed")
)
