package descriptor

import (
	"fmt"

	"github.com/backkem/zigbee/pkg/bitfield"
	"github.com/backkem/zigbee/pkg/codec"
)

// NodePowerDescriptorSize is the encoded size of a node power descriptor.
const NodePowerDescriptorSize = 2

// PowerMode is the current power mode (Section 2.3.2.4.1).
type PowerMode uint8

const (
	// PowerModeSynchronized follows receiver-on-when-idle of the node descriptor.
	PowerModeSynchronized PowerMode = 0b0000
	// PowerModePeriodic turns the receiver on periodically.
	PowerModePeriodic PowerMode = 0b0001
	// PowerModeStimulated turns the receiver on when stimulated, e.g. by a button.
	PowerModeStimulated PowerMode = 0b0010
)

// IsValid reports whether m is a defined power mode. Reserved modes decode
// unchanged so they survive re-encoding.
func (m PowerMode) IsValid() bool {
	return m <= PowerModeStimulated
}

// String returns a human-readable name for the power mode.
func (m PowerMode) String() string {
	switch m {
	case PowerModeSynchronized:
		return "Synchronized"
	case PowerModePeriodic:
		return "Periodic"
	case PowerModeStimulated:
		return "Stimulated"
	default:
		return "Reserved"
	}
}

// PowerSource is a power source; as a flag its value is the bit position in
// the available power sources field (Section 2.3.2.4.2).
type PowerSource uint8

const (
	PowerSourceMains        PowerSource = 0
	PowerSourceRechargeable PowerSource = 1
	PowerSourceDisposable   PowerSource = 2
)

// IsValid reports whether s is a defined power source.
func (s PowerSource) IsValid() bool {
	return s <= PowerSourceDisposable
}

// String returns a human-readable name for the power source.
func (s PowerSource) String() string {
	switch s {
	case PowerSourceMains:
		return "Mains"
	case PowerSourceRechargeable:
		return "Rechargeable"
	case PowerSourceDisposable:
		return "Disposable"
	default:
		return "Reserved"
	}
}

// PowerSources is the 4-bit available power sources field.
type PowerSources uint8

// NewPowerSources sets one bit per source.
func NewPowerSources(sources ...PowerSource) PowerSources {
	return bitfield.FromFlags[PowerSources](sources...)
}

// Has reports whether the source is available.
func (s PowerSources) Has(source PowerSource) bool {
	if !source.IsValid() {
		return false
	}
	return bitfield.IsSet(s, uint8(source))
}

// PowerLevel is the current power source level (Section 2.3.2.4.4).
type PowerLevel uint8

const (
	PowerLevelCritical  PowerLevel = 0b0000
	PowerLevelOneThird  PowerLevel = 0b0100
	PowerLevelTwoThirds PowerLevel = 0b1000
	PowerLevelFull      PowerLevel = 0b1100
)

// IsValid reports whether l is a defined power level.
func (l PowerLevel) IsValid() bool {
	switch l {
	case PowerLevelCritical, PowerLevelOneThird, PowerLevelTwoThirds, PowerLevelFull:
		return true
	default:
		return false
	}
}

// String returns the level as a fraction of full charge.
func (l PowerLevel) String() string {
	switch l {
	case PowerLevelCritical:
		return "Critical"
	case PowerLevelOneThird:
		return "33%"
	case PowerLevelTwoThirds:
		return "66%"
	case PowerLevelFull:
		return "100%"
	default:
		return "Reserved"
	}
}

var (
	pdLow  = bitfield.Bits(0, 4)
	pdHigh = bitfield.Bits(4, 4)
)

// NodePowerDescriptor gives a dynamic indication of the power status of a
// node (Section 2.3.2.4).
type NodePowerDescriptor struct {
	Mode          PowerMode
	Available     PowerSources
	CurrentSource PowerSource
	Level         PowerLevel
}

// NewNodePowerDescriptor builds a node power descriptor. It fails with
// ErrPowerSourceNotAvailable unless current is among the available sources.
func NewNodePowerDescriptor(mode PowerMode, available PowerSources, current PowerSource, level PowerLevel) (*NodePowerDescriptor, error) {
	if !available.Has(current) {
		return nil, fmt.Errorf("%w: %s", ErrPowerSourceNotAvailable, current)
	}
	return &NodePowerDescriptor{
		Mode:          mode,
		Available:     available,
		CurrentSource: current,
		Level:         level,
	}, nil
}

// Size returns the encoded size.
func (d *NodePowerDescriptor) Size() int {
	return NodePowerDescriptorSize
}

// DecodeFrom reads a node power descriptor.
func (d *NodePowerDescriptor) DecodeFrom(r *codec.Reader) error {
	b0, err := r.Uint8()
	if err != nil {
		return fmt.Errorf("descriptor: node power: %w", err)
	}
	b1, err := r.Uint8()
	if err != nil {
		return fmt.Errorf("descriptor: node power: %w", err)
	}
	*d = NodePowerDescriptor{
		Mode:          PowerMode(bitfield.Get(b0, pdLow)),
		Available:     PowerSources(bitfield.Get(b0, pdHigh)),
		CurrentSource: PowerSource(bitfield.Get(b1, pdLow)),
		Level:         PowerLevel(bitfield.Get(b1, pdHigh)),
	}
	return nil
}

// EncodeTo writes the node power descriptor.
func (d *NodePowerDescriptor) EncodeTo(w *codec.Writer) error {
	var b0, b1 uint8
	b0 = bitfield.Set(b0, pdLow, uint8(d.Mode))
	b0 = bitfield.Set(b0, pdHigh, uint8(d.Available))
	b1 = bitfield.Set(b1, pdLow, uint8(d.CurrentSource))
	b1 = bitfield.Set(b1, pdHigh, uint8(d.Level))
	w.PutUint8(b0)
	w.PutUint8(b1)
	return nil
}
