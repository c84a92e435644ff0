package nwk

import (
	"bytes"
	"errors"
	"testing"

	"github.com/backkem/zigbee/pkg/address"
	"github.com/backkem/zigbee/pkg/codec"
)

// Captured command frame header with security and source IEEE address.
var capturedHeader = []byte{
	0x09, 0x12, 0xfc, 0xff, 0x00, 0x00, 0x08, 0xbf,
	0x66, 0x71, 0x9a, 0x2a, 0x00, 0x4b, 0x12, 0x00,
}

func TestHeaderDecodeCaptured(t *testing.T) {
	var h Header
	n, err := codec.Decode(capturedHeader, &h)
	if err != nil {
		t.Fatalf("DecodeFrom() error = %v", err)
	}
	if n != len(capturedHeader) {
		t.Errorf("consumed = %d, want %d", n, len(capturedHeader))
	}

	if h.FrameControl.FrameType() != FrameTypeCommand {
		t.Errorf("FrameType() = %v, want Command", h.FrameControl.FrameType())
	}
	if !h.FrameControl.Security() || !h.FrameControl.SourceIEEE() {
		t.Errorf("FrameControl = %v, want security and src-ieee", h.FrameControl)
	}
	if h.Destination != 0xfffc {
		t.Errorf("Destination = %v, want 0xfffc", h.Destination)
	}
	if h.Source != 0x0000 {
		t.Errorf("Source = %v, want 0x0000", h.Source)
	}
	if h.Radius != 8 {
		t.Errorf("Radius = %d, want 8", h.Radius)
	}
	if h.SequenceNumber != 191 {
		t.Errorf("SequenceNumber = %d, want 191", h.SequenceNumber)
	}
	if h.SourceIEEE == nil || *h.SourceIEEE != 0x00124b002a9a7166 {
		t.Errorf("SourceIEEE = %v, want 00:12:4b:00:2a:9a:71:66", h.SourceIEEE)
	}
	if h.DestinationIEEE != nil || h.MulticastControl != nil || h.SourceRoute != nil {
		t.Error("unexpected optional field present")
	}
	if h.Size() != len(capturedHeader) {
		t.Errorf("Size() = %d, want %d", h.Size(), len(capturedHeader))
	}

	got, err := codec.Encode(&h)
	if err != nil {
		t.Fatalf("EncodeTo() error = %v", err)
	}
	if !bytes.Equal(got, capturedHeader) {
		t.Errorf("EncodeTo() = %x, want %x", got, capturedHeader)
	}
}

func TestHeaderDecodeTruncated(t *testing.T) {
	for i := 0; i < len(capturedHeader); i++ {
		var h Header
		_, err := codec.Decode(capturedHeader[:i], &h)
		if !errors.Is(err, codec.ErrInsufficientBytes) {
			t.Errorf("Decode(%d bytes) error = %v, want %v", i, err, codec.ErrInsufficientBytes)
		}
	}
}

func TestHeaderValidate(t *testing.T) {
	ieee := address.IEEEAddress(0x1122334455667788)
	mc := NewMulticastControl(MulticastModeMember, 1, 1)
	sr := &SourceRouteSubframe{}

	tests := []struct {
		name   string
		header Header
	}{
		{"dest ieee flag without value", Header{FrameControl: FrameControl(0).With(FlagDestinationIEEE, true)}},
		{"dest ieee value without flag", Header{DestinationIEEE: &ieee}},
		{"src ieee value without flag", Header{SourceIEEE: &ieee}},
		{"multicast flag without value", Header{FrameControl: FrameControl(0).With(FlagMulticast, true)}},
		{"multicast value without flag", Header{MulticastControl: &mc}},
		{"source route value without flag", Header{SourceRoute: sr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.header.Validate(); !errors.Is(err, ErrOptionalFieldMismatch) {
				t.Errorf("Validate() error = %v, want %v", err, ErrOptionalFieldMismatch)
			}
			if _, err := codec.Encode(&tt.header); !errors.Is(err, ErrOptionalFieldMismatch) {
				t.Errorf("EncodeTo() error = %v, want %v", err, ErrOptionalFieldMismatch)
			}
		})
	}
}

func TestHeaderSetters(t *testing.T) {
	ieee := address.IEEEAddress(0x00124b0001020304)
	mc := NewMulticastControl(MulticastModeNonMember, 3, 3)
	sr, err := NewSourceRouteSubframe(0, 0x0001)
	if err != nil {
		t.Fatal(err)
	}

	h := Header{FrameControl: NewFrameControl(FrameTypeData)}
	h.SetDestinationIEEE(&ieee)
	h.SetSourceIEEE(&ieee)
	h.SetMulticast(&mc)
	h.SetSourceRoute(sr)

	fc := h.FrameControl
	if !fc.DestinationIEEE() || !fc.SourceIEEE() || !fc.Multicast() || !fc.SourceRoute() {
		t.Errorf("FrameControl = %v, want every optional flag set", fc)
	}
	if err := h.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if want := MinHeaderSize + 8 + 8 + 1 + 4; h.Size() != want {
		t.Errorf("Size() = %d, want %d", h.Size(), want)
	}

	h.SetSourceIEEE(nil)
	h.SetSourceRoute(nil)
	if h.FrameControl.SourceIEEE() || h.FrameControl.SourceRoute() {
		t.Errorf("FrameControl = %v, want src-ieee and source-route cleared", h.FrameControl)
	}
	if err := h.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

// The relay count bounds the source route so the payload that follows the
// header is not taken as relays.
func TestHeaderSourceRouteScope(t *testing.T) {
	data := []byte{
		0x08, 0x04, // data frame, v2, source route flag
		0x34, 0x12, // destination
		0x00, 0x00, // source
		0x1e, 0x05, // radius, sequence
		0x02, 0x01, // relay count, relay index
		0x01, 0x00, 0x02, 0x00, // relays 0x0001, 0x0002
		0xde, 0xad, // payload
	}

	f, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	df, ok := f.(*DataFrame)
	if !ok {
		t.Fatalf("Decode() = %T, want *DataFrame", f)
	}
	sr := df.Header.SourceRoute
	if sr == nil {
		t.Fatal("SourceRoute = nil")
	}
	if sr.RelayCount != 2 || sr.RelayIndex != 1 {
		t.Errorf("RelayCount/RelayIndex = %d/%d, want 2/1", sr.RelayCount, sr.RelayIndex)
	}
	if !bytes.Equal(sr.RelayList, []byte{0x01, 0x00, 0x02, 0x00}) {
		t.Errorf("RelayList = %x, want 01000200", sr.RelayList)
	}
	if !bytes.Equal(df.Payload, []byte{0xde, 0xad}) {
		t.Errorf("Payload = %x, want dead", df.Payload)
	}
	if df.FrameHeader().FrameControl.TransmissionMethod() != TransmissionSourceRouted {
		t.Errorf("TransmissionMethod() = %v, want SourceRouted", df.Header.FrameControl.TransmissionMethod())
	}
}

func TestHeaderSourceRouteTooManyRelays(t *testing.T) {
	data := []byte{0x08, 0x04, 0x34, 0x12, 0x00, 0x00, 0x1e, 0x05, MaxSourceRouteRelays + 1, 0x00}
	var h Header
	if _, err := codec.Decode(data, &h); !errors.Is(err, codec.ErrCapacityExceeded) {
		t.Errorf("DecodeFrom() error = %v, want %v", err, codec.ErrCapacityExceeded)
	}
}

func TestHeaderSourceRouteRelayCountMismatch(t *testing.T) {
	tests := []struct {
		name string
		sr   SourceRouteSubframe
		want error
	}{
		{"extra relays", SourceRouteSubframe{RelayCount: 1, RelayList: []byte{0x01, 0x02, 0x03, 0x04}}, ErrRelayCountMismatch},
		{"missing relays", SourceRouteSubframe{RelayCount: 2, RelayList: []byte{0x01, 0x02}}, ErrRelayCountMismatch},
		{"odd list", SourceRouteSubframe{RelayCount: 1, RelayList: []byte{0x01, 0x02, 0x03}}, ErrOddRelayList},
		{"too many relays", SourceRouteSubframe{RelayCount: MaxSourceRouteRelays + 1}, ErrTooManyRelays},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Header{FrameControl: NewFrameControl(FrameTypeData), Destination: 0x1234, Radius: 30}
			sr := tt.sr
			h.SetSourceRoute(&sr)
			if err := h.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
			f := &DataFrame{Header: h, Payload: []byte{0xaa}}
			if _, err := Encode(f); !errors.Is(err, tt.want) {
				t.Errorf("Encode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHeaderSourceRouteRoundTrip(t *testing.T) {
	sr, err := NewSourceRouteSubframe(0, 0x0201, 0x0403)
	if err != nil {
		t.Fatalf("NewSourceRouteSubframe() error = %v", err)
	}
	h := Header{FrameControl: NewFrameControl(FrameTypeData), Destination: 0x1234, Radius: 30}
	h.SetSourceRoute(sr)
	data, err := Encode(&DataFrame{Header: h, Payload: []byte{0xaa}})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	f, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	df := f.(*DataFrame)
	if !bytes.Equal(df.Header.SourceRoute.RelayList, []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Errorf("RelayList = %x, want 01020304", df.Header.SourceRoute.RelayList)
	}
	if !bytes.Equal(df.Payload, []byte{0xaa}) {
		t.Errorf("Payload = %x, want aa", df.Payload)
	}
}

func TestHeaderMinimumSize(t *testing.T) {
	h := Header{FrameControl: NewFrameControl(FrameTypeData), Destination: 0xfffd, Radius: 1}
	data, err := codec.Encode(&h)
	if err != nil {
		t.Fatalf("EncodeTo() error = %v", err)
	}
	if len(data) != MinHeaderOverhead || h.Size() != MinHeaderOverhead {
		t.Errorf("len = %d, Size() = %d, want %d", len(data), h.Size(), MinHeaderOverhead)
	}
}
