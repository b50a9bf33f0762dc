// ABOUTME: Diff of two stored versions of the same document
// ABOUTME: Snapshots are loaded from any source exposing Get

package docdiff

import (
	"context"
	"fmt"

	"github.com/nainya/docdiff/pkg/model"
	"github.com/nainya/docdiff/pkg/snapshot"
)

// SnapshotSource loads stored document exports. *snapshot.Store implements it.
type SnapshotSource interface {
	Get(documentID, versionID string) (*snapshot.Snapshot, error)
}

// DiffVersions compares two stored versions of a document, the left
// version being the control side.
func (s *Service) DiffVersions(ctx context.Context, src SnapshotSource, documentID, leftVersion, rightVersion string) (*model.DocumentDiff, error) {
	if src == nil {
		return nil, ErrNoSnapshotSource
	}

	left, err := src.Get(documentID, leftVersion)
	if err != nil {
		return nil, fmt.Errorf("load left version: %w", err)
	}
	right, err := src.Get(documentID, rightVersion)
	if err != nil {
		return nil, fmt.Errorf("load right version: %w", err)
	}

	return s.Diff(ctx, left.Content, right.Content)
}
