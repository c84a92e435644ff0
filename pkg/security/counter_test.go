package security

import (
	"testing"

	"github.com/backkem/zigbee/pkg/address"
)

func TestCounterTable(t *testing.T) {
	const src = address.IEEEAddress(0x00124b002a9a7166)

	steps := []struct {
		counter uint32
		want    Freshness
	}{
		{100, CounterNew},
		{100, CounterDuplicate},
		{101, CounterNew},
		{99, CounterNew},
		{99, CounterDuplicate},
		{69, CounterNew},
		{68, CounterStale},
		{140, CounterNew},
		{101, CounterStale},
		{120, CounterNew},
		{120, CounterDuplicate},
		{108, CounterNew},
		{107, CounterStale},
		{1000, CounterNew},
		{140, CounterStale},
		{999, CounterNew},
		{968, CounterNew},
		{967, CounterStale},
		{1001, CounterNew},
		{999, CounterDuplicate},
	}

	table := NewCounterTable(0)
	for i, s := range steps {
		if got := table.Check(src, s.counter); got != s.want {
			t.Errorf("step %d: Check(%d) = %v, want %v", i, s.counter, got, s.want)
		}
	}
}

func TestCounterTableSources(t *testing.T) {
	table := NewCounterTable(2)

	if got := table.Check(1, 5); got != CounterNew {
		t.Errorf("Check() = %v, want new", got)
	}
	if got := table.Check(2, 5); got != CounterNew {
		t.Errorf("other source Check() = %v, want new", got)
	}
	if got := table.Check(1, 5); got != CounterDuplicate {
		t.Errorf("Check() = %v, want duplicate", got)
	}

	table.Check(3, 1)
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}

	table.Forget(3)
	if got := table.Check(3, 1); got != CounterNew {
		t.Errorf("Check() after Forget = %v, want new", got)
	}
}

func TestFreshnessString(t *testing.T) {
	for f, want := range map[Freshness]string{
		CounterNew:       "new",
		CounterDuplicate: "duplicate",
		CounterStale:     "stale",
		Freshness(9):     "unknown",
	} {
		if f.String() != want {
			t.Errorf("%d.String() = %q, want %q", f, f.String(), want)
		}
	}
}
