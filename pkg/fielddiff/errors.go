// ABOUTME: Error definitions for field diff building
// ABOUTME: All of them abort the whole document comparison

package fielddiff

import "errors"

var (
	// ErrEmptyHierarchy is returned when a field difference carries no path.
	ErrEmptyHierarchy = errors.New("empty property hierarchy")

	// ErrInconsistentHierarchy is returned when a property path cannot be
	// followed through the diff containers.
	ErrInconsistentHierarchy = errors.New("inconsistent property hierarchy")

	// ErrInvalidDifference is returned when a raw difference cannot occur
	// where it was found, or lacks a node it must have.
	ErrInvalidDifference = errors.New("invalid difference")
)
