package nwk

import (
	"github.com/backkem/zigbee/pkg/bitfield"
	"github.com/backkem/zigbee/pkg/codec"
)

// Multicast control sub-fields (Figure 3-8).
var (
	mcMaxMemberRadius = bitfield.Bits(0, 3)
	mcNonMemberRadius = bitfield.Bits(3, 3)
	mcMode            = bitfield.Bits(6, 2)
)

var multicastControlLayout = bitfield.MustLayout(8, mcMaxMemberRadius, mcNonMemberRadius, mcMode)

// MulticastControl is the 1-byte multicast control field (Section 3.3.1.8).
type MulticastControl uint8

// NewMulticastControl builds a multicast control. Radii are truncated to 3 bits.
func NewMulticastControl(mode MulticastMode, nonMemberRadius, maxMemberRadius uint8) MulticastControl {
	var v uint8
	v = bitfield.Set(v, mcMode, uint8(mode))
	v = bitfield.Set(v, mcNonMemberRadius, nonMemberRadius)
	v = bitfield.Set(v, mcMaxMemberRadius, maxMemberRadius)
	return MulticastControl(v)
}

// Mode returns the multicast mode. Raw values 0b10 and 0b11 map to
// MulticastModeReserved.
func (m MulticastControl) Mode() MulticastMode {
	return multicastModeFromBits(bitfield.Get(uint8(m), mcMode))
}

// NonMemberRadius returns the remaining hops for non-member forwarding.
func (m MulticastControl) NonMemberRadius() uint8 {
	return bitfield.Get(uint8(m), mcNonMemberRadius)
}

// MaxMemberRadius returns the non-member radius a member resets to.
func (m MulticastControl) MaxMemberRadius() uint8 {
	return bitfield.Get(uint8(m), mcMaxMemberRadius)
}

// Size returns the encoded size.
func (m MulticastControl) Size() int {
	return MulticastControlSize
}

// DecodeFrom reads the multicast control.
func (m *MulticastControl) DecodeFrom(r *codec.Reader) error {
	v, err := r.Uint8()
	if err != nil {
		return err
	}
	*m = MulticastControl(bitfield.Clean(multicastControlLayout, v))
	return nil
}

// EncodeTo writes the multicast control.
func (m MulticastControl) EncodeTo(w *codec.Writer) error {
	w.PutUint8(bitfield.Clean(multicastControlLayout, uint8(m)))
	return nil
}
