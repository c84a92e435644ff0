package nwk

import "errors"

// NWK frame errors.
var (
	// ErrOptionalFieldMismatch is returned when encoding a header whose
	// FrameControl flags disagree with the optional fields that are set.
	ErrOptionalFieldMismatch = errors.New("nwk: optional field does not match frame control flag")

	// ErrFrameTypeMismatch is returned when a frame's FrameControl type
	// does not match the frame variant being encoded.
	ErrFrameTypeMismatch = errors.New("nwk: frame type does not match frame variant")

	// ErrOddRelayList is returned when a relay list does not hold a whole
	// number of short addresses.
	ErrOddRelayList = errors.New("nwk: relay list has odd length")

	// ErrTooManyRelays is returned when a source route exceeds MaxSourceRouteRelays.
	ErrTooManyRelays = errors.New("nwk: too many relays")

	// ErrRelayCountMismatch is returned when encoding a header whose relay
	// list does not hold exactly RelayCount short addresses.
	ErrRelayCountMismatch = errors.New("nwk: relay list does not match relay count")

	// ErrUnsupportedCommand is returned when a command payload has no model.
	ErrUnsupportedCommand = errors.New("nwk: unsupported command")

	// ErrNilFrame is returned when encoding a nil frame.
	ErrNilFrame = errors.New("nwk: nil frame")
)

// Frame format constants.
const (
	// MinHeaderSize is the size of a header without optional fields.
	// Frame Control (2) + Destination (2) + Source (2) + Radius (1) + Sequence (1)
	MinHeaderSize = MinHeaderOverhead

	// FrameControlSize is the size of the frame control field.
	FrameControlSize = 2

	// IEEEAddressSize is the size of an extended address field.
	IEEEAddressSize = 8

	// MulticastControlSize is the size of the multicast control field.
	MulticastControlSize = 1

	// SourceRouteFixedSize is the size of relay count + relay index.
	SourceRouteFixedSize = 2

	// MaxPayloadSize is the capacity reserved for a data or command payload.
	MaxPayloadSize = 128

	// MaxSourceRouteRelays is the largest relay list accepted, matching the
	// default of nwkMaxSourceRoute.
	MaxSourceRouteRelays = 0x0c

	// MaxRelayListSize is the capacity reserved for a relay list in bytes.
	MaxRelayListSize = 2 * MaxSourceRouteRelays
)
