// Package recording persists the confirmed input stream and per-frame
// checksums of a session, so a run can be replayed and verified offline.
package recording

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"frameloop/netcode/internal/frames"
)

// ErrNotFound reports a lookup for a frame that was never recorded.
var ErrNotFound = errors.New("recording: frame not found")

const framePrefix = "frame:"

// FrameRecord is one confirmed frame: every player's input payload in handle
// order plus the hex-encoded state checksum the host reported after the
// frame was simulated.
type FrameRecord struct {
	Frame    frames.Frame `json:"frame"`
	Inputs   [][]byte     `json:"inputs"`
	Checksum string       `json:"checksum,omitempty"`
}

// Store is a leveldb-backed frame journal.
type Store struct {
	db *leveldb.DB
}

// Open opens (or creates) a recording at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open recording %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Record stores a frame, overwriting any previous record for it.
func (s *Store) Record(rec FrameRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", rec.Frame, err)
	}
	if err := s.db.Put(frameKey(rec.Frame), data, nil); err != nil {
		return fmt.Errorf("store frame %d: %w", rec.Frame, err)
	}
	return nil
}

// Frame loads one recorded frame.
func (s *Store) Frame(frame frames.Frame) (FrameRecord, error) {
	data, err := s.db.Get(frameKey(frame), nil)
	if err == leveldb.ErrNotFound {
		return FrameRecord{}, fmt.Errorf("frame %d: %w", frame, ErrNotFound)
	}
	if err != nil {
		return FrameRecord{}, fmt.Errorf("load frame %d: %w", frame, err)
	}
	var rec FrameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return FrameRecord{}, fmt.Errorf("decode frame %d: %w", frame, err)
	}
	return rec, nil
}

// Range iterates the recorded frames in ascending order. Iteration stops at
// the first error returned by fn.
func (s *Store) Range(fn func(FrameRecord) error) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(framePrefix)), nil)
	defer iter.Release()
	for iter.Next() {
		var rec FrameRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return fmt.Errorf("decode %q: %w", iter.Key(), err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// frameKey renders a zero-padded key so lexicographic iteration follows
// frame order.
func frameKey(frame frames.Frame) []byte {
	return []byte(fmt.Sprintf("%s%010d", framePrefix, frame))
}
