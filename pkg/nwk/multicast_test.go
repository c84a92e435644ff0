package nwk

import (
	"testing"

	"github.com/backkem/zigbee/pkg/codec"
)

func TestMulticastControlDecode(t *testing.T) {
	tests := []struct {
		name      string
		raw       byte
		mode      MulticastMode
		nonMember uint8
		maxMember uint8
	}{
		{"all ones", 0xff, MulticastModeReserved, 7, 7},
		{"member", 0b0101_0011, MulticastModeMember, 2, 3},
		{"non member", 0b0000_1001, MulticastModeNonMember, 1, 1},
		{"mode 0b10", 0b1000_0000, MulticastModeReserved, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m MulticastControl
			if err := codec.DecodeExact([]byte{tt.raw}, &m); err != nil {
				t.Fatalf("DecodeFrom() error = %v", err)
			}
			if got := m.Mode(); got != tt.mode {
				t.Errorf("Mode() = %v, want %v", got, tt.mode)
			}
			if got := m.NonMemberRadius(); got != tt.nonMember {
				t.Errorf("NonMemberRadius() = %d, want %d", got, tt.nonMember)
			}
			if got := m.MaxMemberRadius(); got != tt.maxMember {
				t.Errorf("MaxMemberRadius() = %d, want %d", got, tt.maxMember)
			}
		})
	}
}

func TestNewMulticastControl(t *testing.T) {
	m := NewMulticastControl(MulticastModeMember, 2, 3)
	if uint8(m) != 0b0101_0011 {
		t.Errorf("NewMulticastControl() = 0b%08b, want 0b01010011", uint8(m))
	}

	// Radii wider than 3 bits are truncated.
	m = NewMulticastControl(MulticastModeNonMember, 0xff, 0x09)
	if m.NonMemberRadius() != 7 || m.MaxMemberRadius() != 1 {
		t.Errorf("radii = %d/%d, want 7/1", m.NonMemberRadius(), m.MaxMemberRadius())
	}
}
