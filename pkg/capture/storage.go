package capture

import (
	"errors"

	"github.com/segmentio/ksuid"
)

var (
	// ErrNotFound is returned when no record exists for an ID.
	ErrNotFound = errors.New("capture: record not found")

	// ErrClosed is returned when using a closed storage.
	ErrClosed = errors.New("capture: storage closed")
)

// Storage persists captured records.
//
// All methods must be safe for concurrent use.
type Storage interface {
	// Save stores a record and returns its ID.
	Save(rec Record) (ksuid.KSUID, error)
	// Get returns the record stored under id, or ErrNotFound.
	Get(id ksuid.KSUID) (Record, error)
	// List returns up to limit entries, newest first. limit <= 0 returns all.
	List(limit int) ([]Entry, error)
	// Close releases the storage.
	Close() error
}

// Entry pairs a record with its ID.
type Entry struct {
	ID     ksuid.KSUID
	Record Record
}

// newID mints a KSUID carrying the record's receive time.
func newID(rec Record) (ksuid.KSUID, error) {
	if rec.ReceivedAt.IsZero() {
		return ksuid.NewRandom()
	}
	return ksuid.NewRandomWithTime(rec.ReceivedAt)
}
