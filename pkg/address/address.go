// Package address defines the two device address forms used by the mesh
// stack: the 16-bit network (short) address assigned on join and the 64-bit
// IEEE (extended) address burned into each radio.
package address

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/backkem/zigbee/pkg/codec"
)

// ErrInvalidIEEEAddress is returned when an IEEE address string cannot be parsed.
var ErrInvalidIEEEAddress = errors.New("address: invalid IEEE address")

// ShortAddress is a 16-bit network address.
type ShortAddress uint16

// Broadcast addresses (Table 3-69).
const (
	// BroadcastAll reaches every device in the PAN.
	BroadcastAll ShortAddress = 0xffff

	// BroadcastRxOnWhenIdle reaches devices with macRxOnWhenIdle = TRUE.
	BroadcastRxOnWhenIdle ShortAddress = 0xfffd

	// BroadcastRouters reaches all routers and the coordinator.
	BroadcastRouters ShortAddress = 0xfffc

	// BroadcastLowPowerRouters reaches low power routers only.
	BroadcastLowPowerRouters ShortAddress = 0xfffb

	// Coordinator is the short address of the ZigBee coordinator.
	Coordinator ShortAddress = 0x0000

	// Unassigned is the short address of a device that has not joined.
	Unassigned ShortAddress = 0xffff
)

// IsBroadcast reports whether a is in the broadcast range 0xfff8-0xffff.
func (a ShortAddress) IsBroadcast() bool {
	return a >= 0xfff8
}

// String returns the address as 0x-prefixed hex.
func (a ShortAddress) String() string {
	return fmt.Sprintf("0x%04x", uint16(a))
}

// DecodeFrom reads a little-endian short address.
func (a *ShortAddress) DecodeFrom(r *codec.Reader) error {
	v, err := r.Uint16()
	if err != nil {
		return err
	}
	*a = ShortAddress(v)
	return nil
}

// EncodeTo writes the address little-endian.
func (a ShortAddress) EncodeTo(w *codec.Writer) error {
	w.PutUint16(uint16(a))
	return nil
}

// IEEEAddress is a 64-bit extended address.
type IEEEAddress uint64

// String returns the address as colon-separated octets, most significant first.
func (a IEEEAddress) String() string {
	var sb strings.Builder
	for i := 7; i >= 0; i-- {
		fmt.Fprintf(&sb, "%02x", uint8(a>>(8*i)))
		if i > 0 {
			sb.WriteByte(':')
		}
	}
	return sb.String()
}

// ParseIEEEAddress parses "00:12:4b:00:2a:9a:71:66", "00124b002a9a7166" or
// the same with a 0x prefix.
func ParseIEEEAddress(s string) (IEEEAddress, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.ReplaceAll(s, ":", "")
	s = strings.ReplaceAll(s, "-", "")
	if len(s) != 16 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIEEEAddress, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidIEEEAddress, err)
	}
	var a IEEEAddress
	for _, octet := range b {
		a = a<<8 | IEEEAddress(octet)
	}
	return a, nil
}

// DecodeFrom reads a little-endian IEEE address.
func (a *IEEEAddress) DecodeFrom(r *codec.Reader) error {
	v, err := r.Uint64()
	if err != nil {
		return err
	}
	*a = IEEEAddress(v)
	return nil
}

// EncodeTo writes the address little-endian.
func (a IEEEAddress) EncodeTo(w *codec.Writer) error {
	w.PutUint64(uint64(a))
	return nil
}
