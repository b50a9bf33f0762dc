// ABOUTME: Snapshot store on bbolt with tag, time and latest indexes
// ABOUTME: Answers version, tag, as-of and history lookups per document

package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSnapshots = []byte("snapshots") // (documentID, versionID) -> snapshot
	bucketTime      = []byte("time")      // (documentID, createdAt, versionID) -> empty
	bucketTags      = []byte("tags")      // (documentID, tag, versionID) -> empty
	bucketLatest    = []byte("latest")    // documentID -> versionID
)

const sep = 0x00

// Store persists document snapshots in a bbolt database
type Store struct {
	mu   sync.RWMutex // guards db; Close waits for running operations
	db   *bolt.DB
	path string
}

// Open opens or creates the store at path
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketSnapshots, bucketTime, bucketTags, bucketLatest} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Ping returns ErrClosed once the store is closed
func (s *Store) Ping() error {
	return s.view(func(*bolt.Tx) error { return nil })
}

// view runs fn in a read transaction unless the store is closed
func (s *Store) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return ErrClosed
	}
	return s.db.View(fn)
}

// update runs fn in a write transaction unless the store is closed
func (s *Store) update(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return ErrClosed
	}
	return s.db.Update(fn)
}

// Put stores a snapshot. A zero CreatedAt is set to now. Storing an
// existing version replaces it along with its index entries.
func (s *Store) Put(snap *Snapshot) error {
	if err := validate(snap); err != nil {
		return err
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	val, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s/%s: %w", snap.DocumentID, snap.VersionID, err)
	}

	return s.update(func(tx *bolt.Tx) error {
		snapshots := tx.Bucket(bucketSnapshots)
		key := joinKey([]byte(snap.DocumentID), []byte(snap.VersionID))

		// Drop the index entries of the version being replaced
		if old := snapshots.Get(key); old != nil {
			prev, err := decode(old)
			if err != nil {
				return err
			}
			if err := removeIndexes(tx, prev); err != nil {
				return err
			}
		}

		if err := snapshots.Put(key, val); err != nil {
			return err
		}

		// Time index: (documentID, createdAt, versionID)
		if err := tx.Bucket(bucketTime).Put(timeKey(snap.DocumentID, snap.CreatedAt, snap.VersionID), nil); err != nil {
			return err
		}

		// Tag index: (documentID, tag, versionID)
		for _, tag := range snap.Tags {
			if err := tx.Bucket(bucketTags).Put(joinKey([]byte(snap.DocumentID), []byte(tag), []byte(snap.VersionID)), nil); err != nil {
				return err
			}
		}

		return updateLatest(tx, snap.DocumentID)
	})
}

// Get retrieves a specific version
func (s *Store) Get(documentID, versionID string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.view(func(tx *bolt.Tx) error {
		var err error
		snap, err = get(tx, documentID, versionID)
		return err
	})
	return snap, err
}

// Latest returns the most recently created version of a document
func (s *Store) Latest(documentID string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.view(func(tx *bolt.Tx) error {
		versionID := tx.Bucket(bucketLatest).Get([]byte(documentID))
		if versionID == nil {
			return fmt.Errorf("%w: no versions for document %s", ErrNotFound, documentID)
		}
		var err error
		snap, err = get(tx, documentID, string(versionID))
		return err
	})
	return snap, err
}

// ByTag returns the version carrying a tag. When several versions carry
// it, the smallest version id wins.
func (s *Store) ByTag(documentID, tag string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.view(func(tx *bolt.Tx) error {
		prefix := append(joinKey([]byte(documentID), []byte(tag)), sep)
		k, _ := tx.Bucket(bucketTags).Cursor().Seek(prefix)
		if k == nil || !bytes.HasPrefix(k, prefix) {
			return fmt.Errorf("%w: no version tagged %s for document %s", ErrNotFound, tag, documentID)
		}
		var err error
		snap, err = get(tx, documentID, string(k[len(prefix):]))
		return err
	})
	return snap, err
}

// AsOf returns the version that was current at a specific time
func (s *Store) AsOf(documentID string, asOf time.Time) (*Snapshot, error) {
	var snap *Snapshot
	err := s.view(func(tx *bolt.Tx) error {
		prefix := append([]byte(documentID), sep)
		var versionID []byte

		c := tx.Bucket(bucketTime).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			createdAt, id := splitTimeKey(k[len(prefix):])
			// Keys are ordered by time, nothing later can match
			if createdAt.After(asOf) {
				break
			}
			versionID = id
		}

		if versionID == nil {
			return fmt.Errorf("%w: no version for document %s as of %s", ErrNotFound, documentID, asOf.Format(time.RFC3339))
		}
		var err error
		snap, err = get(tx, documentID, string(versionID))
		return err
	})
	return snap, err
}

// List returns the versions of a document ordered by creation time.
// A limit of 0 returns them all.
func (s *Store) List(documentID string, limit int) ([]*Snapshot, error) {
	var snaps []*Snapshot
	err := s.view(func(tx *bolt.Tx) error {
		prefix := append([]byte(documentID), sep)
		c := tx.Bucket(bucketTime).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if limit > 0 && len(snaps) >= limit {
				break
			}
			_, versionID := splitTimeKey(k[len(prefix):])
			snap, err := get(tx, documentID, string(versionID))
			if err != nil {
				return err
			}
			snaps = append(snaps, snap)
		}
		return nil
	})
	return snaps, err
}

// History returns the complete history of a document
func (s *Store) History(documentID string) (*History, error) {
	snaps, err := s.List(documentID, 0)
	if err != nil {
		return nil, err
	}
	return &History{DocumentID: documentID, Snapshots: snaps}, nil
}

// Delete removes a version and its index entries. The latest pointer moves
// back to the newest remaining version.
func (s *Store) Delete(documentID, versionID string) error {
	return s.update(func(tx *bolt.Tx) error {
		snap, err := get(tx, documentID, versionID)
		if err != nil {
			return err
		}
		if err := removeIndexes(tx, snap); err != nil {
			return err
		}
		if err := tx.Bucket(bucketSnapshots).Delete(joinKey([]byte(documentID), []byte(versionID))); err != nil {
			return err
		}
		return updateLatest(tx, documentID)
	})
}

// Helper functions

func validate(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	if snap.DocumentID == "" || snap.VersionID == "" {
		return fmt.Errorf("%w: document id and version id are required", ErrInvalidSnapshot)
	}
	if len(snap.Content) == 0 {
		return fmt.Errorf("%w: %s/%s has no content", ErrInvalidSnapshot, snap.DocumentID, snap.VersionID)
	}
	for _, id := range append([]string{snap.DocumentID, snap.VersionID}, snap.Tags...) {
		if strings.IndexByte(id, sep) >= 0 {
			return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidSnapshot, id)
		}
	}
	return nil
}

func get(tx *bolt.Tx, documentID, versionID string) (*Snapshot, error) {
	val := tx.Bucket(bucketSnapshots).Get(joinKey([]byte(documentID), []byte(versionID)))
	if val == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, documentID, versionID)
	}
	return decode(val)
}

// decode copies out of the bbolt page, values are only valid in their transaction
func decode(val []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func removeIndexes(tx *bolt.Tx, snap *Snapshot) error {
	if err := tx.Bucket(bucketTime).Delete(timeKey(snap.DocumentID, snap.CreatedAt, snap.VersionID)); err != nil {
		return err
	}
	for _, tag := range snap.Tags {
		if err := tx.Bucket(bucketTags).Delete(joinKey([]byte(snap.DocumentID), []byte(tag), []byte(snap.VersionID))); err != nil {
			return err
		}
	}
	return nil
}

// updateLatest points the latest entry at the newest version in the time index
func updateLatest(tx *bolt.Tx, documentID string) error {
	prefix := append([]byte(documentID), sep)
	var newest []byte

	c := tx.Bucket(bucketTime).Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		_, newest = splitTimeKey(k[len(prefix):])
	}

	latest := tx.Bucket(bucketLatest)
	if newest == nil {
		return latest.Delete([]byte(documentID))
	}
	return latest.Put([]byte(documentID), append([]byte(nil), newest...))
}

func joinKey(parts ...[]byte) []byte {
	return bytes.Join(parts, []byte{sep})
}

// timeKey orders entries by creation time. The sign bit is flipped so that
// pre-1970 times still sort before later ones.
func timeKey(documentID string, createdAt time.Time, versionID string) []byte {
	key := make([]byte, 0, len(documentID)+len(versionID)+10)
	key = append(key, documentID...)
	key = append(key, sep)
	key = binary.BigEndian.AppendUint64(key, uint64(createdAt.UnixNano())^(1<<63))
	key = append(key, sep)
	return append(key, versionID...)
}

func splitTimeKey(rest []byte) (time.Time, []byte) {
	if len(rest) < 9 {
		return time.Time{}, nil
	}
	nanos := int64(binary.BigEndian.Uint64(rest[:8]) ^ (1 << 63))
	return time.Unix(0, nanos).UTC(), rest[9:]
}
