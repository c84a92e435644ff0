package capture

import (
	"sync"

	"github.com/segmentio/ksuid"
)

// MemoryStorage is an in-memory Storage. When maxRecords is positive the
// oldest records are evicted to stay within it.
//
// All methods are safe for concurrent use.
type MemoryStorage struct {
	mu         sync.RWMutex
	records    map[ksuid.KSUID]Record
	order      []ksuid.KSUID
	maxRecords int
	closed     bool
}

// NewMemoryStorage creates an in-memory storage. maxRecords <= 0 means unbounded.
func NewMemoryStorage(maxRecords int) *MemoryStorage {
	return &MemoryStorage{
		records:    make(map[ksuid.KSUID]Record),
		maxRecords: maxRecords,
	}
}

// Save stores a copy of rec.
func (m *MemoryStorage) Save(rec Record) (ksuid.KSUID, error) {
	id, err := newID(rec)
	if err != nil {
		return ksuid.Nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ksuid.Nil, ErrClosed
	}

	m.records[id] = rec.Clone()
	m.order = append(m.order, id)
	for m.maxRecords > 0 && len(m.order) > m.maxRecords {
		delete(m.records, m.order[0])
		m.order = m.order[1:]
	}
	return id, nil
}

// Get returns a copy of the record stored under id.
func (m *MemoryStorage) Get(id ksuid.KSUID) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Record{}, ErrClosed
	}

	rec, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec.Clone(), nil
}

// List returns up to limit entries in reverse insertion order.
func (m *MemoryStorage) List(limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	n := len(m.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, 0, n)
	for i := len(m.order) - 1; i >= 0 && len(out) < n; i-- {
		id := m.order[i]
		out = append(out, Entry{ID: id, Record: m.records[id].Clone()})
	}
	return out, nil
}

// Len returns the number of stored records.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Close drops every record.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	m.order = nil
	return nil
}

var _ Storage = (*MemoryStorage)(nil)
