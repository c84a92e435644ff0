package nwk

// FrameType is the 2-bit frame type sub-field of the frame control (Section 3.3.1.1.1).
// Every 2-bit value is defined.
type FrameType uint8

const (
	FrameTypeData     FrameType = 0b00
	FrameTypeCommand  FrameType = 0b01
	FrameTypeReserved FrameType = 0b10
	FrameTypeInterPAN FrameType = 0b11
)

// String returns a human-readable name for the frame type.
func (t FrameType) String() string {
	switch t {
	case FrameTypeData:
		return "Data"
	case FrameTypeCommand:
		return "Command"
	case FrameTypeReserved:
		return "Reserved"
	case FrameTypeInterPAN:
		return "InterPAN"
	default:
		return "Unknown"
	}
}

// DiscoverRoute is the discover route sub-field (Section 3.3.1.1.3).
type DiscoverRoute uint8

const (
	DiscoverRouteSuppress DiscoverRoute = 0x00
	DiscoverRouteEnable   DiscoverRoute = 0x01
	DiscoverRouteReserved DiscoverRoute = 0x02
)

// discoverRouteFromBits maps the raw 2-bit value, folding 0b10 and 0b11
// into DiscoverRouteReserved.
func discoverRouteFromBits(b uint16) DiscoverRoute {
	switch b {
	case 0x00:
		return DiscoverRouteSuppress
	case 0x01:
		return DiscoverRouteEnable
	default:
		return DiscoverRouteReserved
	}
}

// String returns a human-readable name for the discover route mode.
func (d DiscoverRoute) String() string {
	switch d {
	case DiscoverRouteSuppress:
		return "Suppress"
	case DiscoverRouteEnable:
		return "Enable"
	default:
		return "Reserved"
	}
}

// MulticastMode is the multicast mode sub-field (Section 3.3.1.8.1).
type MulticastMode uint8

const (
	MulticastModeNonMember MulticastMode = 0b00
	MulticastModeMember    MulticastMode = 0b01
	MulticastModeReserved  MulticastMode = 0b10
)

func multicastModeFromBits(b uint8) MulticastMode {
	switch b {
	case 0b00:
		return MulticastModeNonMember
	case 0b01:
		return MulticastModeMember
	default:
		return MulticastModeReserved
	}
}

// String returns a human-readable name for the multicast mode.
func (m MulticastMode) String() string {
	switch m {
	case MulticastModeNonMember:
		return "NonMember"
	case MulticastModeMember:
		return "Member"
	default:
		return "Reserved"
	}
}

// TransmissionMethod is the logical delivery kind of a frame (Table 3-45).
type TransmissionMethod uint8

const (
	TransmissionUnicast TransmissionMethod = iota
	TransmissionBroadcast
	TransmissionMulticast
	TransmissionSourceRouted
	// TransmissionReserved is returned for flag combinations the table
	// does not define, such as route discovery enabled on a multicast.
	TransmissionReserved
)

// String returns a human-readable name for the transmission method.
func (m TransmissionMethod) String() string {
	switch m {
	case TransmissionUnicast:
		return "Unicast"
	case TransmissionBroadcast:
		return "Broadcast"
	case TransmissionMulticast:
		return "Multicast"
	case TransmissionSourceRouted:
		return "SourceRouted"
	default:
		return "Reserved"
	}
}

// CommandID identifies a NWK command frame (Section 3.4).
// Values outside 0x01-0x0d are reserved; they decode without error and
// report IsValid() == false so the frame can still be forwarded.
type CommandID uint8

const (
	CommandRouteRequest             CommandID = 0x01
	CommandRouteReply               CommandID = 0x02
	CommandNetworkStatus            CommandID = 0x03
	CommandLeave                    CommandID = 0x04
	CommandRouteRecord              CommandID = 0x05
	CommandRejoinRequest            CommandID = 0x06
	CommandRejoinResponse           CommandID = 0x07
	CommandLinkStatus               CommandID = 0x08
	CommandNetworkReport            CommandID = 0x09
	CommandNetworkUpdate            CommandID = 0x0a
	CommandEndDeviceTimeoutRequest  CommandID = 0x0b
	CommandEndDeviceTimeoutResponse CommandID = 0x0c
	CommandLinkPowerDelta           CommandID = 0x0d
)

// IsValid returns true if the command identifier is a defined value.
func (c CommandID) IsValid() bool {
	return c >= CommandRouteRequest && c <= CommandLinkPowerDelta
}

// String returns a human-readable name for the command identifier.
func (c CommandID) String() string {
	switch c {
	case CommandRouteRequest:
		return "RouteRequest"
	case CommandRouteReply:
		return "RouteReply"
	case CommandNetworkStatus:
		return "NetworkStatus"
	case CommandLeave:
		return "Leave"
	case CommandRouteRecord:
		return "RouteRecord"
	case CommandRejoinRequest:
		return "RejoinRequest"
	case CommandRejoinResponse:
		return "RejoinResponse"
	case CommandLinkStatus:
		return "LinkStatus"
	case CommandNetworkReport:
		return "NetworkReport"
	case CommandNetworkUpdate:
		return "NetworkUpdate"
	case CommandEndDeviceTimeoutRequest:
		return "EndDeviceTimeoutRequest"
	case CommandEndDeviceTimeoutResponse:
		return "EndDeviceTimeoutResponse"
	case CommandLinkPowerDelta:
		return "LinkPowerDelta"
	default:
		return "Reserved"
	}
}
