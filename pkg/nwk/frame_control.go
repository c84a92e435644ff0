package nwk

import (
	"fmt"

	"github.com/backkem/zigbee/pkg/bitfield"
	"github.com/backkem/zigbee/pkg/codec"
)

// Frame control sub-fields (Figure 3-6).
var (
	fcFrameType       = bitfield.Bits(0, 2)
	fcProtocolVersion = bitfield.Bits(2, 4)
	fcDiscoverRoute   = bitfield.Bits(6, 2)
)

// FrameControlFlag is the bit position of a single-bit frame control sub-field.
type FrameControlFlag uint8

// Frame control flags.
const (
	FlagMulticast          FrameControlFlag = 8
	FlagSecurity           FrameControlFlag = 9
	FlagSourceRoute        FrameControlFlag = 10
	FlagDestinationIEEE    FrameControlFlag = 11
	FlagSourceIEEE         FrameControlFlag = 12
	FlagEndDeviceInitiator FrameControlFlag = 13
)

// Bits 14-15 are reserved.
var frameControlLayout = bitfield.MustLayout(16,
	fcFrameType,
	fcProtocolVersion,
	fcDiscoverRoute,
	bitfield.Bit(uint8(FlagMulticast)),
	bitfield.Bit(uint8(FlagSecurity)),
	bitfield.Bit(uint8(FlagSourceRoute)),
	bitfield.Bit(uint8(FlagDestinationIEEE)),
	bitfield.Bit(uint8(FlagSourceIEEE)),
	bitfield.Bit(uint8(FlagEndDeviceInitiator)),
)

// FrameControl is the 16-bit NWK frame control field (Section 3.3.1.1).
// It is an immutable value; the With methods return modified copies.
type FrameControl uint16

// NewFrameControl returns a frame control of the given type carrying the
// current ProtocolVersion and no flags.
func NewFrameControl(t FrameType) FrameControl {
	return FrameControl(0).WithFrameType(t).WithProtocolVersion(ProtocolVersion)
}

// FrameType returns the frame type sub-field.
func (fc FrameControl) FrameType() FrameType {
	return FrameType(bitfield.Get(uint16(fc), fcFrameType))
}

// ProtocolVersion returns the 4-bit protocol version sub-field.
func (fc FrameControl) ProtocolVersion() uint8 {
	return uint8(bitfield.Get(uint16(fc), fcProtocolVersion))
}

// DiscoverRoute returns the discover route sub-field.
func (fc FrameControl) DiscoverRoute() DiscoverRoute {
	return discoverRouteFromBits(bitfield.Get(uint16(fc), fcDiscoverRoute))
}

// Has reports whether the given flag is set.
func (fc FrameControl) Has(f FrameControlFlag) bool {
	return bitfield.IsSet(uint16(fc), uint8(f))
}

// Multicast reports whether the frame is a multicast frame.
func (fc FrameControl) Multicast() bool { return fc.Has(FlagMulticast) }

// Security reports whether NWK security is applied.
func (fc FrameControl) Security() bool { return fc.Has(FlagSecurity) }

// SourceRoute reports whether a source route subframe is present.
func (fc FrameControl) SourceRoute() bool { return fc.Has(FlagSourceRoute) }

// DestinationIEEE reports whether the destination IEEE address is present.
func (fc FrameControl) DestinationIEEE() bool { return fc.Has(FlagDestinationIEEE) }

// SourceIEEE reports whether the source IEEE address is present.
func (fc FrameControl) SourceIEEE() bool { return fc.Has(FlagSourceIEEE) }

// EndDeviceInitiator reports whether an end device originated the frame.
func (fc FrameControl) EndDeviceInitiator() bool { return fc.Has(FlagEndDeviceInitiator) }

// With returns a copy with the flag set or cleared.
func (fc FrameControl) With(f FrameControlFlag, on bool) FrameControl {
	return FrameControl(bitfield.With(uint16(fc), uint8(f), on))
}

// WithFrameType returns a copy with the frame type replaced.
func (fc FrameControl) WithFrameType(t FrameType) FrameControl {
	return FrameControl(bitfield.Set(uint16(fc), fcFrameType, uint16(t)))
}

// WithProtocolVersion returns a copy with the protocol version replaced.
// Only the low 4 bits of v are kept.
func (fc FrameControl) WithProtocolVersion(v uint8) FrameControl {
	return FrameControl(bitfield.Set(uint16(fc), fcProtocolVersion, uint16(v)))
}

// WithDiscoverRoute returns a copy with the discover route mode replaced.
func (fc FrameControl) WithDiscoverRoute(d DiscoverRoute) FrameControl {
	return FrameControl(bitfield.Set(uint16(fc), fcDiscoverRoute, uint16(d)))
}

// TransmissionMethod derives the delivery kind from the flags (Table 3-45).
// A set source route flag wins; otherwise the discover route mode, the
// multicast flag and the destination IEEE flag select the method.
func (fc FrameControl) TransmissionMethod() TransmissionMethod {
	if fc.SourceRoute() {
		return TransmissionSourceRouted
	}

	discover := fc.DiscoverRoute()
	multicast := fc.Multicast()
	destIEEE := fc.DestinationIEEE()

	switch {
	case discover == DiscoverRouteSuppress && !multicast && !destIEEE:
		return TransmissionBroadcast
	case discover == DiscoverRouteSuppress && multicast && !destIEEE:
		return TransmissionMulticast
	case (discover == DiscoverRouteSuppress || discover == DiscoverRouteEnable) && !multicast:
		return TransmissionUnicast
	default:
		return TransmissionReserved
	}
}

// Size returns the encoded size of the frame control.
func (fc FrameControl) Size() int {
	return FrameControlSize
}

// DecodeFrom reads the frame control. Reserved bits are cleared.
func (fc *FrameControl) DecodeFrom(r *codec.Reader) error {
	v, err := r.Uint16()
	if err != nil {
		return err
	}
	*fc = FrameControl(bitfield.Clean(frameControlLayout, v))
	return nil
}

// EncodeTo writes the frame control with reserved bits cleared.
func (fc FrameControl) EncodeTo(w *codec.Writer) error {
	w.PutUint16(bitfield.Clean(frameControlLayout, uint16(fc)))
	return nil
}

// String returns a compact description of the frame control.
func (fc FrameControl) String() string {
	s := fmt.Sprintf("%s v%d route=%s", fc.FrameType(), fc.ProtocolVersion(), fc.DiscoverRoute())
	for _, f := range []struct {
		flag FrameControlFlag
		name string
	}{
		{FlagMulticast, "multicast"},
		{FlagSecurity, "security"},
		{FlagSourceRoute, "source-route"},
		{FlagDestinationIEEE, "dst-ieee"},
		{FlagSourceIEEE, "src-ieee"},
		{FlagEndDeviceInitiator, "ed-initiator"},
	} {
		if fc.Has(f.flag) {
			s += " " + f.name
		}
	}
	return s
}
