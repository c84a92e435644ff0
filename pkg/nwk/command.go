package nwk

import (
	"fmt"

	"github.com/backkem/zigbee/pkg/address"
	"github.com/backkem/zigbee/pkg/bitfield"
	"github.com/backkem/zigbee/pkg/codec"
)

// CommandPayload is a modelled NWK command payload.
type CommandPayload interface {
	CommandID() CommandID
	Size() int
	codec.Decoder
	codec.Encoder
}

// ParseCommand decodes the payload of a command frame. Commands without a
// payload model return ErrUnsupportedCommand; the raw bytes stay available
// in f.Payload.
func ParseCommand(f *CommandFrame) (CommandPayload, error) {
	var p CommandPayload
	switch f.Command {
	case CommandNetworkStatus:
		p = &NetworkStatusCommand{}
	case CommandLeave:
		p = &LeaveCommand{}
	case CommandRouteRecord:
		p = &RouteRecordCommand{}
	default:
		return nil, fmt.Errorf("%w: %s (0x%02x)", ErrUnsupportedCommand, f.Command, uint8(f.Command))
	}
	if err := codec.DecodeExact(f.Payload, p); err != nil {
		return nil, fmt.Errorf("nwk: %s command: %w", f.Command, err)
	}
	return p, nil
}

// NewCommandFrameFrom encodes p into a command frame.
func NewCommandFrameFrom(h Header, p CommandPayload) (*CommandFrame, error) {
	payload, err := codec.Encode(p)
	if err != nil {
		return nil, err
	}
	return NewCommandFrame(h, p.CommandID(), payload), nil
}

// NetworkStatusCode is the status code of a network status command (Table 3-42).
type NetworkStatusCode uint8

const (
	StatusNoRouteAvailable          NetworkStatusCode = 0x00
	StatusTreeLinkFailure           NetworkStatusCode = 0x01
	StatusNonTreeLinkFailure        NetworkStatusCode = 0x02
	StatusLowBatteryLevel           NetworkStatusCode = 0x03
	StatusNoRoutingCapacity         NetworkStatusCode = 0x04
	StatusNoIndirectCapacity        NetworkStatusCode = 0x05
	StatusIndirectTransactionExpiry NetworkStatusCode = 0x06
	StatusTargetDeviceUnavailable   NetworkStatusCode = 0x07
	StatusTargetAddressUnallocated  NetworkStatusCode = 0x08
	StatusParentLinkFailure         NetworkStatusCode = 0x09
	StatusValidateRoute             NetworkStatusCode = 0x0a
	StatusSourceRouteFailure        NetworkStatusCode = 0x0b
	StatusManyToOneRouteFailure     NetworkStatusCode = 0x0c
	StatusAddressConflict           NetworkStatusCode = 0x0d
	StatusVerifyAddresses           NetworkStatusCode = 0x0e
	StatusPANIdentifierUpdate       NetworkStatusCode = 0x0f
	StatusNetworkAddressUpdate      NetworkStatusCode = 0x10
	StatusBadFrameCounter           NetworkStatusCode = 0x11
	StatusBadKeySequenceNumber      NetworkStatusCode = 0x12
)

var networkStatusNames = map[NetworkStatusCode]string{
	StatusNoRouteAvailable:          "NoRouteAvailable",
	StatusTreeLinkFailure:           "TreeLinkFailure",
	StatusNonTreeLinkFailure:        "NonTreeLinkFailure",
	StatusLowBatteryLevel:           "LowBatteryLevel",
	StatusNoRoutingCapacity:         "NoRoutingCapacity",
	StatusNoIndirectCapacity:        "NoIndirectCapacity",
	StatusIndirectTransactionExpiry: "IndirectTransactionExpiry",
	StatusTargetDeviceUnavailable:   "TargetDeviceUnavailable",
	StatusTargetAddressUnallocated:  "TargetAddressUnallocated",
	StatusParentLinkFailure:         "ParentLinkFailure",
	StatusValidateRoute:             "ValidateRoute",
	StatusSourceRouteFailure:        "SourceRouteFailure",
	StatusManyToOneRouteFailure:     "ManyToOneRouteFailure",
	StatusAddressConflict:           "AddressConflict",
	StatusVerifyAddresses:           "VerifyAddresses",
	StatusPANIdentifierUpdate:       "PANIdentifierUpdate",
	StatusNetworkAddressUpdate:      "NetworkAddressUpdate",
	StatusBadFrameCounter:           "BadFrameCounter",
	StatusBadKeySequenceNumber:      "BadKeySequenceNumber",
}

// String returns a human-readable name for the status code.
func (s NetworkStatusCode) String() string {
	if name, ok := networkStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%02x)", uint8(s))
}

// NetworkStatusCommand reports a routing or addressing problem (Section 3.4.3).
type NetworkStatusCommand struct {
	Status      NetworkStatusCode
	Destination address.ShortAddress
}

func (c *NetworkStatusCommand) CommandID() CommandID { return CommandNetworkStatus }
func (c *NetworkStatusCommand) Size() int            { return 3 }

func (c *NetworkStatusCommand) DecodeFrom(r *codec.Reader) error {
	status, err := r.Uint8()
	if err != nil {
		return err
	}
	c.Status = NetworkStatusCode(status)
	return c.Destination.DecodeFrom(r)
}

func (c *NetworkStatusCommand) EncodeTo(w *codec.Writer) error {
	w.PutUint8(uint8(c.Status))
	return c.Destination.EncodeTo(w)
}

// LeaveOptions is the options field of a leave command (Figure 3-25).
type LeaveOptions uint8

// Leave option bits.
const (
	LeaveOptionRejoin         uint8 = 5
	LeaveOptionRequest        uint8 = 6
	LeaveOptionRemoveChildren uint8 = 7
)

var leaveOptionsLayout = bitfield.MustLayout(8,
	bitfield.Bit(LeaveOptionRejoin),
	bitfield.Bit(LeaveOptionRequest),
	bitfield.Bit(LeaveOptionRemoveChildren),
)

// Rejoin reports whether the device should rejoin after leaving.
func (o LeaveOptions) Rejoin() bool { return bitfield.IsSet(o, LeaveOptionRejoin) }

// Request reports whether this is a request for another device to leave.
func (o LeaveOptions) Request() bool { return bitfield.IsSet(o, LeaveOptionRequest) }

// RemoveChildren reports whether children of the device should also leave.
func (o LeaveOptions) RemoveChildren() bool { return bitfield.IsSet(o, LeaveOptionRemoveChildren) }

// String lists the option bits.
func (o LeaveOptions) String() string {
	return fmt.Sprintf("rejoin=%t request=%t remove_children=%t", o.Rejoin(), o.Request(), o.RemoveChildren())
}

// LeaveCommand announces or requests that a device leaves the network (Section 3.4.4).
type LeaveCommand struct {
	Options LeaveOptions
}

// NewLeaveCommand builds a leave command from the option bits.
func NewLeaveCommand(rejoin, request, removeChildren bool) *LeaveCommand {
	var o LeaveOptions
	o = bitfield.With(o, LeaveOptionRejoin, rejoin)
	o = bitfield.With(o, LeaveOptionRequest, request)
	o = bitfield.With(o, LeaveOptionRemoveChildren, removeChildren)
	return &LeaveCommand{Options: o}
}

func (c *LeaveCommand) CommandID() CommandID { return CommandLeave }
func (c *LeaveCommand) Size() int            { return 1 }

func (c *LeaveCommand) DecodeFrom(r *codec.Reader) error {
	v, err := r.Uint8()
	if err != nil {
		return err
	}
	c.Options = LeaveOptions(bitfield.Clean(leaveOptionsLayout, v))
	return nil
}

func (c *LeaveCommand) EncodeTo(w *codec.Writer) error {
	w.PutUint8(uint8(bitfield.Clean(leaveOptionsLayout, c.Options)))
	return nil
}

// RouteRecordCommand records the relays a frame passed through on its way
// to a concentrator (Section 3.4.5).
type RouteRecordCommand struct {
	Relays []address.ShortAddress
}

func (c *RouteRecordCommand) CommandID() CommandID { return CommandRouteRecord }
func (c *RouteRecordCommand) Size() int            { return 1 + 2*len(c.Relays) }

func (c *RouteRecordCommand) DecodeFrom(r *codec.Reader) error {
	count, err := r.Uint8()
	if err != nil {
		return err
	}
	if int(count) > MaxSourceRouteRelays {
		return codec.ErrCapacityExceeded
	}
	relays := make([]address.ShortAddress, count)
	for i := range relays {
		if err := relays[i].DecodeFrom(r); err != nil {
			return err
		}
	}
	c.Relays = relays
	return nil
}

func (c *RouteRecordCommand) EncodeTo(w *codec.Writer) error {
	if len(c.Relays) > MaxSourceRouteRelays {
		return ErrTooManyRelays
	}
	w.PutUint8(uint8(len(c.Relays)))
	for _, a := range c.Relays {
		_ = a.EncodeTo(w)
	}
	return nil
}
