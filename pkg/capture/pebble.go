package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/backkem/zigbee/pkg/codec"
	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// Key layout. Records live under recordPrefix, ordered by receive time in
// nanoseconds and then by a save sequence, with the KSUID as suffix. The
// id index maps a KSUID back to its record key.
//
//	'r' | time (8, big-endian, sign flipped) | seq (8, big-endian) | ksuid (20)
//	'i' | ksuid (20) -> record key
const (
	recordPrefix  byte = 'r'
	idPrefix      byte = 'i'
	recordKeySize      = 1 + 8 + 8 + len(ksuid.Nil)
)

func recordKey(at time.Time, seq uint64, id ksuid.KSUID) []byte {
	key := make([]byte, 0, recordKeySize)
	key = append(key, recordPrefix)
	key = binary.BigEndian.AppendUint64(key, uint64(at.UnixNano())^(1<<63))
	key = binary.BigEndian.AppendUint64(key, seq)
	return append(key, id.Bytes()...)
}

func idKey(id ksuid.KSUID) []byte {
	return append([]byte{idPrefix}, id.Bytes()...)
}

// splitRecordKey returns the sequence and KSUID of a record key.
func splitRecordKey(key []byte) (uint64, ksuid.KSUID, error) {
	if len(key) != recordKeySize || key[0] != recordPrefix {
		return 0, ksuid.Nil, fmt.Errorf("capture: malformed key %x", key)
	}
	id, err := ksuid.FromBytes(key[17:])
	return binary.BigEndian.Uint64(key[9:17]), id, err
}

func recordBounds() *pebble.IterOptions {
	return &pebble.IterOptions{
		LowerBound: []byte{recordPrefix},
		UpperBound: []byte{recordPrefix + 1},
	}
}

// PebbleStorage persists records in a Pebble database. Records are ordered
// by receive time with nanosecond resolution; records with equal times keep
// their save order.
type PebbleStorage struct {
	db         *pebble.DB
	maxRecords int

	// mu serializes eviction with saves; Pebble itself is concurrency-safe.
	mu     sync.Mutex
	count  int
	seq    uint64
	closed bool
}

// OpenPebble opens or creates a database at path. maxRecords <= 0 means unbounded.
func OpenPebble(path string, maxRecords int) (*PebbleStorage, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}

	s := &PebbleStorage{db: db, maxRecords: maxRecords}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// load counts stored records and resumes the sequence after the largest one.
func (s *PebbleStorage) load() error {
	iter, err := s.db.NewIter(recordBounds())
	if err != nil {
		return err
	}
	for iter.First(); iter.Valid(); iter.Next() {
		seq, _, err := splitRecordKey(iter.Key())
		if err != nil {
			iter.Close()
			return err
		}
		if seq >= s.seq {
			s.seq = seq + 1
		}
		s.count++
	}
	return iter.Close()
}

// Save encodes rec and stores it under a new KSUID.
func (s *PebbleStorage) Save(rec Record) (ksuid.KSUID, error) {
	id, err := newID(rec)
	if err != nil {
		return ksuid.Nil, err
	}
	data, err := codec.Encode(&rec)
	if err != nil {
		return ksuid.Nil, err
	}
	at := rec.ReceivedAt
	if at.IsZero() {
		at = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ksuid.Nil, ErrClosed
	}

	key := recordKey(at, s.seq, id)
	batch := s.db.NewBatch()
	if err := batch.Set(key, data, nil); err != nil {
		batch.Close()
		return ksuid.Nil, err
	}
	if err := batch.Set(idKey(id), key, nil); err != nil {
		batch.Close()
		return ksuid.Nil, err
	}
	if err := batch.Commit(pebble.NoSync); err != nil {
		return ksuid.Nil, err
	}
	s.seq++
	s.count++

	if s.maxRecords > 0 && s.count > s.maxRecords {
		if err := s.evict(s.count - s.maxRecords); err != nil {
			return id, fmt.Errorf("capture: evict: %w", err)
		}
	}
	return id, nil
}

// evict deletes the n oldest records and their index entries. Caller holds mu.
func (s *PebbleStorage) evict(n int) error {
	iter, err := s.db.NewIter(recordBounds())
	if err != nil {
		return err
	}
	batch := s.db.NewBatch()
	deleted := 0
	for iter.First(); iter.Valid() && deleted < n; iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		_, id, err := splitRecordKey(key)
		if err == nil {
			err = batch.Delete(idKey(id), nil)
		}
		if err == nil {
			err = batch.Delete(key, nil)
		}
		if err != nil {
			iter.Close()
			batch.Close()
			return err
		}
		deleted++
	}
	if err := iter.Close(); err != nil {
		batch.Close()
		return err
	}
	if err := batch.Commit(pebble.NoSync); err != nil {
		return err
	}
	s.count -= deleted
	return nil
}

// Get loads the record stored under id.
func (s *PebbleStorage) Get(id ksuid.KSUID) (Record, error) {
	if s.isClosed() {
		return Record{}, ErrClosed
	}

	ref, closer, err := s.db.Get(idKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	key := append([]byte(nil), ref...)
	closer.Close()

	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()

	var rec Record
	if err := codec.DecodeExact(value, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// List returns up to limit entries, newest first.
func (s *PebbleStorage) List(limit int) ([]Entry, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	iter, err := s.db.NewIter(recordBounds())
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Entry
	for iter.Last(); iter.Valid(); iter.Prev() {
		if limit > 0 && len(out) >= limit {
			break
		}
		_, id, err := splitRecordKey(iter.Key())
		if err != nil {
			return nil, err
		}
		var rec Record
		if err := codec.DecodeExact(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("capture: record %s: %w", id, err)
		}
		out = append(out, Entry{ID: id, Record: rec})
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *PebbleStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *PebbleStorage) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close flushes and closes the database.
func (s *PebbleStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Flush(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

var _ Storage = (*PebbleStorage)(nil)
