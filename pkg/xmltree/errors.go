// ABOUTME: Error definitions for XML tree parsing
// ABOUTME: Sentinel errors callers can match with errors.Is

package xmltree

import "errors"

var (
	// ErrMalformed indicates the input is not well-formed XML.
	ErrMalformed = errors.New("malformed XML")

	// ErrNoDocumentElement indicates the input holds no element at all.
	ErrNoDocumentElement = errors.New("XML document has no document element")
)
