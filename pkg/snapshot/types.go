// ABOUTME: Snapshot data model for stored document exports
// ABOUTME: A snapshot is one XML export of a document at one version

package snapshot

import "time"

// Snapshot is the XML export of a document at one version
type Snapshot struct {
	DocumentID  string            `json:"documentId"`
	VersionID   string            `json:"versionId"`
	CreatedAt   time.Time         `json:"createdAt"`
	CreatedBy   string            `json:"createdBy,omitempty"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Content     []byte            `json:"content"`
}

// History is the timeline of a document, oldest snapshot first
type History struct {
	DocumentID string
	Snapshots  []*Snapshot
}
