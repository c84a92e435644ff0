package nwk

import (
	"bytes"
	"errors"
	"testing"

	"github.com/backkem/zigbee/pkg/address"
	"github.com/backkem/zigbee/pkg/codec"
)

func TestCommandIDString(t *testing.T) {
	tests := []struct {
		id    CommandID
		want  string
		valid bool
	}{
		{0x00, "Reserved", false},
		{CommandRouteRequest, "RouteRequest", true},
		{CommandNetworkStatus, "NetworkStatus", true},
		{CommandLeave, "Leave", true},
		{CommandRouteRecord, "RouteRecord", true},
		{CommandLinkPowerDelta, "LinkPowerDelta", true},
		{0x0e, "Reserved", false},
		{0xff, "Reserved", false},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("CommandID(0x%02x).String() = %q, want %q", uint8(tt.id), got, tt.want)
		}
		if got := tt.id.IsValid(); got != tt.valid {
			t.Errorf("CommandID(0x%02x).IsValid() = %v, want %v", uint8(tt.id), got, tt.valid)
		}
	}
}

func TestParseLeaveCommand(t *testing.T) {
	f := NewCommandFrame(Header{}, CommandLeave, []byte{0b0110_0001})
	p, err := ParseCommand(f)
	if err != nil {
		t.Fatalf("ParseCommand() error = %v", err)
	}
	leave, ok := p.(*LeaveCommand)
	if !ok {
		t.Fatalf("ParseCommand() = %T, want *LeaveCommand", p)
	}
	if !leave.Options.Rejoin() || !leave.Options.Request() || leave.Options.RemoveChildren() {
		t.Errorf("Options = 0b%08b, want rejoin and request", uint8(leave.Options))
	}
	if uint8(leave.Options) != 0b0110_0000 {
		t.Errorf("reserved bits not cleared: 0b%08b", uint8(leave.Options))
	}

	if got := NewLeaveCommand(true, true, false); got.Options != leave.Options {
		t.Errorf("NewLeaveCommand() = 0b%08b, want 0b%08b", uint8(got.Options), uint8(leave.Options))
	}
}

func TestParseNetworkStatusCommand(t *testing.T) {
	f := NewCommandFrame(Header{}, CommandNetworkStatus, []byte{0x0b, 0x34, 0x12})
	p, err := ParseCommand(f)
	if err != nil {
		t.Fatalf("ParseCommand() error = %v", err)
	}
	ns := p.(*NetworkStatusCommand)
	if ns.Status != StatusSourceRouteFailure {
		t.Errorf("Status = %v, want SourceRouteFailure", ns.Status)
	}
	if ns.Destination != 0x1234 {
		t.Errorf("Destination = %v, want 0x1234", ns.Destination)
	}
	if got := NetworkStatusCode(0x99).String(); got != "Unknown(0x99)" {
		t.Errorf("String() = %q, want Unknown(0x99)", got)
	}
}

func TestRouteRecordCommand(t *testing.T) {
	cmd := &RouteRecordCommand{Relays: []address.ShortAddress{0x0001, 0xabcd}}
	f, err := NewCommandFrameFrom(Header{FrameControl: NewFrameControl(FrameTypeCommand)}, cmd)
	if err != nil {
		t.Fatalf("NewCommandFrameFrom() error = %v", err)
	}
	if f.Command != CommandRouteRecord {
		t.Errorf("Command = %v, want RouteRecord", f.Command)
	}
	if !bytes.Equal(f.Payload, []byte{0x02, 0x01, 0x00, 0xcd, 0xab}) {
		t.Errorf("Payload = %x, want 020100cdab", f.Payload)
	}

	p, err := ParseCommand(f)
	if err != nil {
		t.Fatalf("ParseCommand() error = %v", err)
	}
	rr := p.(*RouteRecordCommand)
	if len(rr.Relays) != 2 || rr.Relays[0] != 0x0001 || rr.Relays[1] != 0xabcd {
		t.Errorf("Relays = %v, want [0x0001 0xabcd]", rr.Relays)
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		id   CommandID
		data []byte
		want error
	}{
		{"unsupported", CommandRouteRequest, []byte{0x00}, ErrUnsupportedCommand},
		{"short network status", CommandNetworkStatus, []byte{0x00, 0x01}, codec.ErrInsufficientBytes},
		{"empty leave", CommandLeave, nil, codec.ErrInsufficientBytes},
		{"trailing leave", CommandLeave, []byte{0x00, 0x00}, codec.ErrTrailingBytes},
		{"route record over capacity", CommandRouteRecord, []byte{MaxSourceRouteRelays + 1}, codec.ErrCapacityExceeded},
		{"short route record", CommandRouteRecord, []byte{0x02, 0x01, 0x00}, codec.ErrInsufficientBytes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommand(NewCommandFrame(Header{}, tt.id, tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseCommand() error = %v, want %v", err, tt.want)
			}
		})
	}
}
