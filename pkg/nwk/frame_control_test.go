package nwk

import (
	"errors"
	"testing"

	"github.com/backkem/zigbee/pkg/codec"
)

func TestFrameControlDecode(t *testing.T) {
	var fc FrameControl
	if err := codec.DecodeExact([]byte{0b0111_1100, 0b0010_1010}, &fc); err != nil {
		t.Fatalf("DecodeFrom() error = %v", err)
	}

	if got := fc.FrameType(); got != FrameTypeData {
		t.Errorf("FrameType() = %v, want Data", got)
	}
	if got := fc.ProtocolVersion(); got != 0b1111 {
		t.Errorf("ProtocolVersion() = %d, want 15", got)
	}
	if got := fc.DiscoverRoute(); got != DiscoverRouteEnable {
		t.Errorf("DiscoverRoute() = %v, want Enable", got)
	}
	if fc.Multicast() {
		t.Error("Multicast() = true, want false")
	}
	if !fc.Security() {
		t.Error("Security() = false, want true")
	}
	if fc.SourceRoute() {
		t.Error("SourceRoute() = true, want false")
	}
	if !fc.DestinationIEEE() {
		t.Error("DestinationIEEE() = false, want true")
	}
	if fc.SourceIEEE() {
		t.Error("SourceIEEE() = true, want false")
	}
	if !fc.EndDeviceInitiator() {
		t.Error("EndDeviceInitiator() = false, want true")
	}
}

func TestFrameControlInsufficientBytes(t *testing.T) {
	for _, data := range [][]byte{nil, {0x01}} {
		var fc FrameControl
		_, err := codec.Decode(data, &fc)
		if !errors.Is(err, codec.ErrInsufficientBytes) {
			t.Errorf("Decode(%x) error = %v, want %v", data, err, codec.ErrInsufficientBytes)
		}
	}
}

func TestFrameControlReservedBitsCleared(t *testing.T) {
	var fc FrameControl
	if _, err := codec.Decode([]byte{0x08, 0xc0}, &fc); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if fc != 0x0008 {
		t.Errorf("Decode() = 0x%04x, want 0x0008", uint16(fc))
	}

	got, err := codec.Encode(FrameControl(0xffff))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got[0] != 0xff || got[1] != 0x3f {
		t.Errorf("Encode(0xffff) = %x, want ff3f", got)
	}
}

func TestNewFrameControl(t *testing.T) {
	fc := NewFrameControl(FrameTypeCommand)
	if fc.FrameType() != FrameTypeCommand {
		t.Errorf("FrameType() = %v, want Command", fc.FrameType())
	}
	if fc.ProtocolVersion() != ProtocolVersion {
		t.Errorf("ProtocolVersion() = %d, want %d", fc.ProtocolVersion(), ProtocolVersion)
	}
	if fc.DiscoverRoute() != DiscoverRouteSuppress {
		t.Errorf("DiscoverRoute() = %v, want Suppress", fc.DiscoverRoute())
	}

	fc = fc.With(FlagSecurity, true).With(FlagSourceIEEE, true).WithDiscoverRoute(DiscoverRouteEnable)
	if uint16(fc) != 0x1249 {
		t.Errorf("FrameControl = 0x%04x, want 0x1249", uint16(fc))
	}

	fc = fc.With(FlagSecurity, false)
	if fc.Security() {
		t.Error("Security() = true after clearing")
	}
	if !fc.SourceIEEE() {
		t.Error("clearing security changed SourceIEEE")
	}
}

func TestDiscoverRouteReservedValues(t *testing.T) {
	for _, raw := range []uint16{0b10 << 6, 0b11 << 6} {
		if got := FrameControl(raw).DiscoverRoute(); got != DiscoverRouteReserved {
			t.Errorf("FrameControl(0x%04x).DiscoverRoute() = %v, want Reserved", raw, got)
		}
	}
}

func TestTransmissionMethod(t *testing.T) {
	tests := []struct {
		name     string
		discover DiscoverRoute
		flags    []FrameControlFlag
		want     TransmissionMethod
	}{
		{"suppress no flags", DiscoverRouteSuppress, nil, TransmissionBroadcast},
		{"suppress multicast", DiscoverRouteSuppress, []FrameControlFlag{FlagMulticast}, TransmissionMulticast},
		{"suppress dest ieee", DiscoverRouteSuppress, []FrameControlFlag{FlagDestinationIEEE}, TransmissionUnicast},
		{"enable no flags", DiscoverRouteEnable, nil, TransmissionUnicast},
		{"enable dest ieee", DiscoverRouteEnable, []FrameControlFlag{FlagDestinationIEEE}, TransmissionUnicast},
		{"enable multicast", DiscoverRouteEnable, []FrameControlFlag{FlagMulticast}, TransmissionReserved},
		{"suppress multicast dest ieee", DiscoverRouteSuppress, []FrameControlFlag{FlagMulticast, FlagDestinationIEEE}, TransmissionReserved},
		{"reserved discover", DiscoverRouteReserved, nil, TransmissionReserved},
		{"source route", DiscoverRouteEnable, []FrameControlFlag{FlagSourceRoute, FlagMulticast}, TransmissionSourceRouted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := NewFrameControl(FrameTypeData).WithDiscoverRoute(tt.discover)
			for _, f := range tt.flags {
				fc = fc.With(f, true)
			}
			if got := fc.TransmissionMethod(); got != tt.want {
				t.Errorf("TransmissionMethod() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrameTypeString(t *testing.T) {
	tests := []struct {
		t    FrameType
		want string
	}{
		{FrameTypeData, "Data"},
		{FrameTypeCommand, "Command"},
		{FrameTypeReserved, "Reserved"},
		{FrameTypeInterPAN, "InterPAN"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("FrameType(%d).String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}
