package descriptor

import (
	"fmt"

	"github.com/backkem/zigbee/pkg/bitfield"
	"github.com/backkem/zigbee/pkg/codec"
)

// NodeDescriptorSize is the encoded size of a node descriptor.
const NodeDescriptorSize = 13

// LogicalType is the device type of a node (Section 2.3.2.3.1).
type LogicalType uint8

const (
	LogicalTypeCoordinator LogicalType = 0b000
	LogicalTypeRouter      LogicalType = 0b001
	LogicalTypeEndDevice   LogicalType = 0b010
)

// IsValid reports whether t is a defined logical type. Values 0b011-0b111
// are reserved; they decode unchanged and report "Reserved" from String.
func (t LogicalType) IsValid() bool {
	return t <= LogicalTypeEndDevice
}

// String returns a human-readable name for the logical type.
func (t LogicalType) String() string {
	switch t {
	case LogicalTypeCoordinator:
		return "Coordinator"
	case LogicalTypeRouter:
		return "Router"
	case LogicalTypeEndDevice:
		return "EndDevice"
	default:
		return "Reserved"
	}
}

// FrequencyBand is a bit of the frequency band field (Section 2.3.2.3.5).
type FrequencyBand uint8

const (
	// FrequencyBand868 is 868-868.6 MHz.
	FrequencyBand868 FrequencyBand = 0
	// FrequencyBand915 is 902-928 MHz.
	FrequencyBand915 FrequencyBand = 2
	// FrequencyBand2400 is 2400-2483.5 MHz.
	FrequencyBand2400 FrequencyBand = 3
	// FrequencyBandEuropeanFSK is the European FSK sub-GHz bands.
	FrequencyBandEuropeanFSK FrequencyBand = 4
)

// FrequencyBands is the 5-bit frequency band field.
type FrequencyBands uint8

// NewFrequencyBands sets one bit per band.
func NewFrequencyBands(bands ...FrequencyBand) FrequencyBands {
	return bitfield.FromFlags[FrequencyBands](bands...)
}

// Has reports whether the band is supported.
func (b FrequencyBands) Has(band FrequencyBand) bool {
	return bitfield.IsSet(b, uint8(band))
}

// MACCapability is a bit of the MAC capability flags (Section 2.3.2.3.6).
type MACCapability uint8

const (
	MACAlternatePANCoordinator MACCapability = 0
	MACDeviceType              MACCapability = 1
	MACPowerSource             MACCapability = 2
	MACReceiverOnWhenIdle      MACCapability = 3
	MACSecurityCapability      MACCapability = 6
	MACAllocateAddress         MACCapability = 7
)

// MACCapabilities is the MAC capability flags field.
type MACCapabilities uint8

var macCapabilitiesLayout = bitfield.MustLayout(8,
	bitfield.Bits(0, 4),
	bitfield.Bits(6, 2),
)

// NewMACCapabilities sets one bit per capability.
func NewMACCapabilities(caps ...MACCapability) MACCapabilities {
	return bitfield.FromFlags[MACCapabilities](caps...)
}

// Has reports whether the capability is set.
func (c MACCapabilities) Has(capability MACCapability) bool {
	return bitfield.IsSet(c, uint8(capability))
}

// ServerFlag is a bit of the server mask (Section 2.3.2.3.10).
type ServerFlag uint8

const (
	ServerPrimaryTrustCenter       ServerFlag = 0
	ServerBackupTrustCenter        ServerFlag = 1
	ServerPrimaryBindingTableCache ServerFlag = 2
	ServerBackupBindingTableCache  ServerFlag = 3
	ServerPrimaryDiscoveryCache    ServerFlag = 4
	ServerBackupDiscoveryCache     ServerFlag = 5
	ServerNetworkManager           ServerFlag = 6
)

var (
	smFlags    = bitfield.Bits(0, 7)
	smRevision = bitfield.Bits(9, 7)
)

var serverMaskLayout = bitfield.MustLayout(16, smFlags, smRevision)

// ServerMask is the server mask field: server flags in bits 0-6 and the
// stack compliance revision in bits 9-15.
type ServerMask uint16

// NewServerMask builds a server mask.
func NewServerMask(revision uint8, flags ...ServerFlag) ServerMask {
	v := bitfield.FromFlags[uint16](flags...)
	return ServerMask(bitfield.Set(v, smRevision, uint16(revision)))
}

// Has reports whether the server flag is set.
func (m ServerMask) Has(f ServerFlag) bool {
	return bitfield.IsSet(m, uint8(f))
}

// StackComplianceRevision returns the revision of the core specification
// the stack implements.
func (m ServerMask) StackComplianceRevision() uint8 {
	return uint8(bitfield.Get(uint16(m), smRevision))
}

// DescriptorCapability is a bit of the descriptor capability field.
type DescriptorCapability uint8

const (
	ExtendedActiveEndpointListAvailable   DescriptorCapability = 0
	ExtendedSimpleDescriptorListAvailable DescriptorCapability = 1
)

// DescriptorCapabilities is the descriptor capability field.
type DescriptorCapabilities uint8

// NewDescriptorCapabilities sets one bit per capability.
func NewDescriptorCapabilities(caps ...DescriptorCapability) DescriptorCapabilities {
	return bitfield.FromFlags[DescriptorCapabilities](caps...)
}

// Has reports whether the capability is set.
func (c DescriptorCapabilities) Has(capability DescriptorCapability) bool {
	return bitfield.IsSet(c, uint8(capability))
}

// Node descriptor byte 0 and byte 1 sub-fields.
var (
	ndLogicalType    = bitfield.Bits(0, 3)
	ndComplex        = bitfield.Bit(3)
	ndUser           = bitfield.Bit(4)
	ndAPSFlags       = bitfield.Bits(0, 3)
	ndFrequencyBands = bitfield.Bits(3, 5)
)

var (
	ndByte0Layout = bitfield.MustLayout(8, ndLogicalType, ndComplex, ndUser)
	ndDescCaps    = bitfield.MustLayout(8, bitfield.Bits(0, 2))
)

// NodeDescriptor describes the capabilities of a node (Section 2.3.2.3).
type NodeDescriptor struct {
	LogicalType                 LogicalType
	ComplexDescriptorAvailable  bool
	UserDescriptorAvailable     bool
	APSFlags                    uint8
	FrequencyBands              FrequencyBands
	MACCapabilities             MACCapabilities
	ManufacturerCode            uint16
	MaximumBufferSize           uint8
	MaximumIncomingTransferSize uint16
	ServerMask                  ServerMask
	MaximumOutgoingTransferSize uint16
	DescriptorCapabilities      DescriptorCapabilities
}

// Size returns the encoded size.
func (d *NodeDescriptor) Size() int {
	return NodeDescriptorSize
}

// DecodeFrom reads a node descriptor.
func (d *NodeDescriptor) DecodeFrom(r *codec.Reader) error {
	b, err := r.Bytes(NodeDescriptorSize)
	if err != nil {
		return fmt.Errorf("descriptor: node: %w", err)
	}
	fr := codec.NewReader(b)
	b0, _ := fr.Uint8()
	b1, _ := fr.Uint8()
	mac, _ := fr.Uint8()
	manufacturer, _ := fr.Uint16()
	buffer, _ := fr.Uint8()
	incoming, _ := fr.Uint16()
	server, _ := fr.Uint16()
	outgoing, _ := fr.Uint16()
	caps, _ := fr.Uint8()

	*d = NodeDescriptor{
		LogicalType:                 LogicalType(bitfield.Get(b0, ndLogicalType)),
		ComplexDescriptorAvailable:  bitfield.IsSet(b0, ndComplex.Offset),
		UserDescriptorAvailable:     bitfield.IsSet(b0, ndUser.Offset),
		APSFlags:                    bitfield.Get(b1, ndAPSFlags),
		FrequencyBands:              FrequencyBands(bitfield.Get(b1, ndFrequencyBands)),
		MACCapabilities:             MACCapabilities(bitfield.Clean(macCapabilitiesLayout, mac)),
		ManufacturerCode:            manufacturer,
		MaximumBufferSize:           buffer,
		MaximumIncomingTransferSize: incoming,
		ServerMask:                  ServerMask(bitfield.Clean(serverMaskLayout, server)),
		MaximumOutgoingTransferSize: outgoing,
		DescriptorCapabilities:      DescriptorCapabilities(bitfield.Clean(ndDescCaps, caps)),
	}
	return nil
}

// EncodeTo writes the node descriptor.
func (d *NodeDescriptor) EncodeTo(w *codec.Writer) error {
	var b0 uint8
	b0 = bitfield.Set(b0, ndLogicalType, uint8(d.LogicalType))
	b0 = bitfield.With(b0, ndComplex.Offset, d.ComplexDescriptorAvailable)
	b0 = bitfield.With(b0, ndUser.Offset, d.UserDescriptorAvailable)

	var b1 uint8
	b1 = bitfield.Set(b1, ndAPSFlags, d.APSFlags)
	b1 = bitfield.Set(b1, ndFrequencyBands, uint8(d.FrequencyBands))

	w.PutUint8(bitfield.Clean(ndByte0Layout, b0))
	w.PutUint8(b1)
	w.PutUint8(uint8(bitfield.Clean(macCapabilitiesLayout, d.MACCapabilities)))
	w.PutUint16(d.ManufacturerCode)
	w.PutUint8(d.MaximumBufferSize)
	w.PutUint16(d.MaximumIncomingTransferSize)
	w.PutUint16(uint16(bitfield.Clean(serverMaskLayout, d.ServerMask)))
	w.PutUint16(d.MaximumOutgoingTransferSize)
	w.PutUint8(uint8(bitfield.Clean(ndDescCaps, d.DescriptorCapabilities)))
	return nil
}
