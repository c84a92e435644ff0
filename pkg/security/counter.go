package security

import (
	"sync"

	"github.com/backkem/zigbee/pkg/address"
)

// CounterWindowSize is the number of counters below the highest one seen
// that are tracked individually.
const CounterWindowSize = 32

// Freshness classifies a frame counter against earlier frames from the
// same source.
type Freshness uint8

const (
	// CounterNew is a counter not seen before.
	CounterNew Freshness = iota
	// CounterDuplicate is a counter already seen inside the window.
	CounterDuplicate
	// CounterStale is a counter older than the window.
	CounterStale
)

func (f Freshness) String() string {
	switch f {
	case CounterNew:
		return "new"
	case CounterDuplicate:
		return "duplicate"
	case CounterStale:
		return "stale"
	default:
		return "unknown"
	}
}

// counterWindow tracks the highest counter of one source and a bitmap of
// the CounterWindowSize counters below it. Bit n marks max-n-1 as seen.
// NWK frame counters do not roll over.
type counterWindow struct {
	max    uint32
	bitmap uint32
}

func (w *counterWindow) check(counter uint32) Freshness {
	if counter > w.max {
		w.advance(counter)
		return CounterNew
	}
	if counter == w.max {
		return CounterDuplicate
	}

	behind := w.max - counter
	if behind > CounterWindowSize {
		return CounterStale
	}
	mask := uint32(1) << (behind - 1)
	if w.bitmap&mask != 0 {
		return CounterDuplicate
	}
	w.bitmap |= mask
	return CounterNew
}

func (w *counterWindow) advance(newMax uint32) {
	shift := newMax - w.max
	if shift > CounterWindowSize {
		w.bitmap = 0
	} else {
		// A shift of CounterWindowSize clears every bit before the old
		// maximum is marked.
		w.bitmap = (w.bitmap << shift) | (1 << (shift - 1))
	}
	w.max = newMax
}

// CounterTable detects replayed secured frames by tracking the frame
// counter of each extended source address. It is safe for concurrent use.
type CounterTable struct {
	mu         sync.Mutex
	windows    map[address.IEEEAddress]*counterWindow
	maxSources int
}

// NewCounterTable creates a table. When maxSources > 0 and the table is
// full, an arbitrary source is forgotten to make room.
func NewCounterTable(maxSources int) *CounterTable {
	return &CounterTable{
		windows:    make(map[address.IEEEAddress]*counterWindow),
		maxSources: maxSources,
	}
}

// Check classifies counter for src and records it. The first counter of a
// source is always new.
func (t *CounterTable) Check(src address.IEEEAddress, counter uint32) Freshness {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.windows[src]
	if !ok {
		if t.maxSources > 0 && len(t.windows) >= t.maxSources {
			for k := range t.windows {
				delete(t.windows, k)
				break
			}
		}
		t.windows[src] = &counterWindow{max: counter}
		return CounterNew
	}
	return w.check(counter)
}

// Forget drops the state of src, e.g. after it rejoined with a new key.
func (t *CounterTable) Forget(src address.IEEEAddress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.windows, src)
}

// Len returns the number of tracked sources.
func (t *CounterTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}
