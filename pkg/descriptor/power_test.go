package descriptor

import (
	"bytes"
	"errors"
	"testing"

	"github.com/backkem/zigbee/pkg/codec"
)

func TestPowerSources(t *testing.T) {
	s := NewPowerSources(PowerSourceMains, PowerSourceDisposable)
	if uint8(s) != 0b0101 {
		t.Errorf("NewPowerSources() = 0b%04b, want 0b0101", uint8(s))
	}
	if !s.Has(PowerSourceMains) || !s.Has(PowerSourceDisposable) {
		t.Error("Has() = false for an available source")
	}
	if s.Has(PowerSourceRechargeable) {
		t.Error("Has(Rechargeable) = true, want false")
	}
}

func TestNewNodePowerDescriptor(t *testing.T) {
	d, err := NewNodePowerDescriptor(PowerModeSynchronized, NewPowerSources(PowerSourceMains), PowerSourceMains, PowerLevelTwoThirds)
	if err != nil {
		t.Fatalf("NewNodePowerDescriptor() error = %v", err)
	}

	data, err := codec.Encode(d)
	if err != nil {
		t.Fatalf("EncodeTo() error = %v", err)
	}
	if len(data) != 2 || data[0] != 0x10 || data[1] != 0x80 {
		t.Errorf("EncodeTo() = %x, want 1080", data)
	}

	var out NodePowerDescriptor
	if err := codec.DecodeExact(data, &out); err != nil {
		t.Fatalf("DecodeFrom() error = %v", err)
	}
	if out != *d {
		t.Errorf("round trip = %+v, want %+v", out, *d)
	}
}

func TestNewNodePowerDescriptorUnavailableSource(t *testing.T) {
	_, err := NewNodePowerDescriptor(PowerModeSynchronized, NewPowerSources(PowerSourceMains), PowerSourceDisposable, PowerLevelTwoThirds)
	if !errors.Is(err, ErrPowerSourceNotAvailable) {
		t.Errorf("NewNodePowerDescriptor() error = %v, want %v", err, ErrPowerSourceNotAvailable)
	}
}

func TestNodePowerDescriptorReservedValues(t *testing.T) {
	data := []byte{0x8f, 0x3f}
	var d NodePowerDescriptor
	if err := codec.DecodeExact(data, &d); err != nil {
		t.Fatalf("DecodeFrom() error = %v", err)
	}
	if d.Mode.IsValid() || d.Mode.String() != "Reserved" {
		t.Errorf("Mode = %v (valid %t), want Reserved", d.Mode, d.Mode.IsValid())
	}
	if d.CurrentSource.IsValid() || d.CurrentSource.String() != "Reserved" {
		t.Errorf("CurrentSource = %v (valid %t), want Reserved", d.CurrentSource, d.CurrentSource.IsValid())
	}
	if d.Level.IsValid() || d.Level.String() != "Reserved" {
		t.Errorf("Level = %v (valid %t), want Reserved", d.Level, d.Level.IsValid())
	}
	if d.Available.Has(d.CurrentSource) {
		t.Error("Available.Has(reserved source) = true, want false")
	}

	// Reserved bits are kept as decoded.
	got, err := codec.Encode(&d)
	if err != nil {
		t.Fatalf("EncodeTo() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("EncodeTo() = %x, want %x", got, data)
	}

	if _, err := codec.Decode([]byte{0x00}, &d); !errors.Is(err, codec.ErrInsufficientBytes) {
		t.Errorf("Decode() error = %v, want %v", err, codec.ErrInsufficientBytes)
	}
}
