package nwk

import (
	"fmt"

	"github.com/backkem/zigbee/pkg/address"
	"github.com/backkem/zigbee/pkg/codec"
)

// SourceRouteSubframe lists the relays a source-routed frame travels through
// (Section 3.3.1.9).
//
// RelayList holds the raw little-endian short addresses. When decoded on its
// own the subframe consumes every remaining byte of its reader; inside a
// header the reader is scoped to RelayCount relays first.
type SourceRouteSubframe struct {
	RelayCount uint8
	RelayIndex uint8
	RelayList  []byte
}

// NewSourceRouteSubframe builds a subframe from relay addresses.
func NewSourceRouteSubframe(index uint8, relays ...address.ShortAddress) (*SourceRouteSubframe, error) {
	if len(relays) > MaxSourceRouteRelays {
		return nil, ErrTooManyRelays
	}
	w := codec.NewWriter(2 * len(relays))
	for _, a := range relays {
		_ = a.EncodeTo(w)
	}
	return &SourceRouteSubframe{
		RelayCount: uint8(len(relays)),
		RelayIndex: index,
		RelayList:  w.Bytes(),
	}, nil
}

// Relays returns the relay list as short addresses.
func (s *SourceRouteSubframe) Relays() ([]address.ShortAddress, error) {
	if len(s.RelayList)%2 != 0 {
		return nil, ErrOddRelayList
	}
	r := codec.NewReader(s.RelayList)
	out := make([]address.ShortAddress, 0, len(s.RelayList)/2)
	for r.Len() > 0 {
		var a address.ShortAddress
		if err := a.DecodeFrom(r); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Size returns the encoded size.
func (s *SourceRouteSubframe) Size() int {
	return SourceRouteFixedSize + len(s.RelayList)
}

// DecodeFrom reads the relay count, relay index and every remaining byte
// of r as the relay list.
func (s *SourceRouteSubframe) DecodeFrom(r *codec.Reader) error {
	count, err := r.Uint8()
	if err != nil {
		return fmt.Errorf("nwk: relay count: %w", err)
	}
	index, err := r.Uint8()
	if err != nil {
		return fmt.Errorf("nwk: relay index: %w", err)
	}
	list, err := r.Rest(MaxRelayListSize)
	if err != nil {
		return fmt.Errorf("nwk: relay list: %w", err)
	}
	s.RelayCount = count
	s.RelayIndex = index
	s.RelayList = list
	return nil
}

// EncodeTo writes the subframe.
func (s *SourceRouteSubframe) EncodeTo(w *codec.Writer) error {
	if len(s.RelayList) > MaxRelayListSize {
		return fmt.Errorf("nwk: relay list: %w", codec.ErrCapacityExceeded)
	}
	w.PutUint8(s.RelayCount)
	w.PutUint8(s.RelayIndex)
	w.PutBytes(s.RelayList)
	return nil
}

// decodeScoped reads the subframe from a header, limiting the relay list to
// RelayCount short addresses so the frame payload is left untouched.
func (s *SourceRouteSubframe) decodeScoped(r *codec.Reader) error {
	count, err := r.Peek()
	if err != nil {
		return fmt.Errorf("nwk: relay count: %w", err)
	}
	if int(count) > MaxSourceRouteRelays {
		return fmt.Errorf("nwk: relay list: %w", codec.ErrCapacityExceeded)
	}
	sub, err := r.Scope(SourceRouteFixedSize + 2*int(count))
	if err != nil {
		return fmt.Errorf("nwk: source route: %w", err)
	}
	return s.DecodeFrom(sub)
}
