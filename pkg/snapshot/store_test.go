// ABOUTME: Tests for the snapshot store
// ABOUTME: Verifies version, tag, as-of and history lookups

package snapshot

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func putSnapshot(t *testing.T, store *Store, versionID string, createdAt time.Time, tags ...string) {
	t.Helper()
	snap := &Snapshot{
		DocumentID: "doc1",
		VersionID:  versionID,
		CreatedAt:  createdAt,
		CreatedBy:  "user1",
		Tags:       tags,
		Content:    []byte("<document>" + versionID + "</document>"),
	}
	if err := store.Put(snap); err != nil {
		t.Fatalf("Failed to put %s: %v", versionID, err)
	}
}

func TestPutAndGet(t *testing.T) {
	store := setupTestStore(t)

	snap := &Snapshot{
		DocumentID:  "doc1",
		VersionID:   "1.0",
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "user1",
		Description: "Initial version",
		Tags:        []string{"stable"},
		Metadata:    map[string]string{"source": "import"},
		Content:     []byte("<document/>"),
	}
	if err := store.Put(snap); err != nil {
		t.Fatalf("Failed to put snapshot: %v", err)
	}

	retrieved, err := store.Get("doc1", "1.0")
	if err != nil {
		t.Fatalf("Failed to get snapshot: %v", err)
	}

	if retrieved.Description != "Initial version" {
		t.Errorf("Expected description, got %q", retrieved.Description)
	}
	if string(retrieved.Content) != "<document/>" {
		t.Errorf("Expected content, got %q", retrieved.Content)
	}
	if retrieved.Metadata["source"] != "import" {
		t.Errorf("Expected metadata source=import, got %s", retrieved.Metadata["source"])
	}
	if !retrieved.CreatedAt.Equal(snap.CreatedAt) {
		t.Errorf("Expected %v, got %v", snap.CreatedAt, retrieved.CreatedAt)
	}
}

func TestPutRejectsInvalidSnapshots(t *testing.T) {
	store := setupTestStore(t)

	cases := map[string]*Snapshot{
		"nil":            nil,
		"no document id": {VersionID: "1", Content: []byte("x")},
		"no version id":  {DocumentID: "doc1", Content: []byte("x")},
		"no content":     {DocumentID: "doc1", VersionID: "1"},
		"nul in version": {DocumentID: "doc1", VersionID: "1\x002", Content: []byte("x")},
		"nul in tag":     {DocumentID: "doc1", VersionID: "1", Tags: []string{"a\x00"}, Content: []byte("x")},
	}
	for name, snap := range cases {
		if err := store.Put(snap); !errors.Is(err, ErrInvalidSnapshot) {
			t.Errorf("%s: expected ErrInvalidSnapshot, got %v", name, err)
		}
	}
}

func TestLatest(t *testing.T) {
	store := setupTestStore(t)
	base := time.Now().UTC()

	putSnapshot(t, store, "1.0", base)
	putSnapshot(t, store, "2.0", base.Add(time.Hour))
	// Older version stored last does not become the latest
	putSnapshot(t, store, "0.9", base.Add(-time.Hour))

	latest, err := store.Latest("doc1")
	if err != nil {
		t.Fatalf("Failed to get latest: %v", err)
	}
	if latest.VersionID != "2.0" {
		t.Errorf("Expected latest 2.0, got %s", latest.VersionID)
	}

	if _, err := store.Latest("unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAsOf(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	putSnapshot(t, store, "1.0", base)
	putSnapshot(t, store, "1.1", base.Add(24*time.Hour))
	putSnapshot(t, store, "2.0", base.Add(48*time.Hour))

	tests := []struct {
		asOf time.Time
		want string
	}{
		{base, "1.0"},
		{base.Add(36 * time.Hour), "1.1"},
		{base.Add(72 * time.Hour), "2.0"},
	}
	for _, tt := range tests {
		snap, err := store.AsOf("doc1", tt.asOf)
		if err != nil {
			t.Fatalf("AsOf(%v) failed: %v", tt.asOf, err)
		}
		if snap.VersionID != tt.want {
			t.Errorf("AsOf(%v): expected %s, got %s", tt.asOf, tt.want, snap.VersionID)
		}
	}

	if _, err := store.AsOf("doc1", base.Add(-time.Second)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound before the first version, got %v", err)
	}
}

func TestByTag(t *testing.T) {
	store := setupTestStore(t)
	base := time.Now().UTC()

	putSnapshot(t, store, "1.0", base, "stable")
	putSnapshot(t, store, "2.0-rc", base.Add(time.Hour), "draft")

	snap, err := store.ByTag("doc1", "draft")
	if err != nil {
		t.Fatalf("Failed to get by tag: %v", err)
	}
	if snap.VersionID != "2.0-rc" {
		t.Errorf("Expected 2.0-rc, got %s", snap.VersionID)
	}

	if _, err := store.ByTag("doc1", "stab"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Tag prefix should not match, got %v", err)
	}
}

func TestHistory(t *testing.T) {
	store := setupTestStore(t)
	base := time.Now().UTC()

	putSnapshot(t, store, "b", base.Add(2*time.Minute))
	putSnapshot(t, store, "a", base.Add(time.Minute))
	putSnapshot(t, store, "c", base.Add(3*time.Minute))

	history, err := store.History("doc1")
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(history.Snapshots) != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", len(history.Snapshots))
	}
	for i, want := range []string{"a", "b", "c"} {
		if history.Snapshots[i].VersionID != want {
			t.Errorf("Snapshot %d: expected %s, got %s", i, want, history.Snapshots[i].VersionID)
		}
	}

	limited, err := store.List("doc1", 2)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 snapshots, got %d", len(limited))
	}
}

func TestReplaceVersion(t *testing.T) {
	store := setupTestStore(t)
	base := time.Now().UTC()

	putSnapshot(t, store, "1.0", base, "old")
	putSnapshot(t, store, "1.0", base.Add(time.Hour), "new")

	history, err := store.History("doc1")
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(history.Snapshots) != 1 {
		t.Fatalf("Expected 1 snapshot after replace, got %d", len(history.Snapshots))
	}
	if _, err := store.ByTag("doc1", "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Old tag should be gone, got %v", err)
	}
	if _, err := store.ByTag("doc1", "new"); err != nil {
		t.Errorf("New tag should resolve: %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := setupTestStore(t)
	base := time.Now().UTC()

	putSnapshot(t, store, "1.0", base, "stable")
	putSnapshot(t, store, "2.0", base.Add(time.Hour))

	if err := store.Delete("doc1", "2.0"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	latest, err := store.Latest("doc1")
	if err != nil {
		t.Fatalf("Failed to get latest: %v", err)
	}
	if latest.VersionID != "1.0" {
		t.Errorf("Expected latest to move back to 1.0, got %s", latest.VersionID)
	}

	if err := store.Delete("doc1", "1.0"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := store.Latest("doc1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound once empty, got %v", err)
	}
	if _, err := store.ByTag("doc1", "stable"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected tag index cleared, got %v", err)
	}
	if err := store.Delete("doc1", "1.0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestClosedStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "closed.db"))
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}
	if _, err := store.Get("doc1", "1.0"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestCloseWaitsForRunningOperations(t *testing.T) {
	store := setupTestStore(t)
	putSnapshot(t, store, "1.0", time.Now())

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, err := store.Get("doc1", "1.0")
				errs <- err
			}
		}()
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil && !errors.Is(err, ErrClosed) {
			t.Errorf("Expected success or ErrClosed, got %v", err)
		}
	}
	if err := store.Put(&Snapshot{DocumentID: "doc1", VersionID: "2.0", Content: []byte("x")}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed on put, got %v", err)
	}
}
