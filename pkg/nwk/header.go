package nwk

import (
	"fmt"

	"github.com/backkem/zigbee/pkg/address"
	"github.com/backkem/zigbee/pkg/codec"
)

// Header is the NWK header (Section 3.3.1).
//
// Optional fields are present exactly when the matching FrameControl flag
// is set. Use the Set methods to keep both in step; EncodeTo rejects a
// header where they disagree.
//
// Wire format (little-endian):
//
//	Frame Control      2
//	Destination        2
//	Source             2
//	Radius             1
//	Sequence Number    1
//	Destination IEEE   8  (DestinationIEEE flag)
//	Source IEEE        8  (SourceIEEE flag)
//	Multicast Control  1  (Multicast flag)
//	Source Route       2 + 2n  (SourceRoute flag)
type Header struct {
	FrameControl   FrameControl
	Destination    address.ShortAddress
	Source         address.ShortAddress
	Radius         uint8
	SequenceNumber uint8

	DestinationIEEE  *address.IEEEAddress
	SourceIEEE       *address.IEEEAddress
	MulticastControl *MulticastControl
	SourceRoute      *SourceRouteSubframe
}

// SetDestinationIEEE sets or clears (nil) the destination IEEE address and flag.
func (h *Header) SetDestinationIEEE(a *address.IEEEAddress) {
	h.DestinationIEEE = a
	h.FrameControl = h.FrameControl.With(FlagDestinationIEEE, a != nil)
}

// SetSourceIEEE sets or clears (nil) the source IEEE address and flag.
func (h *Header) SetSourceIEEE(a *address.IEEEAddress) {
	h.SourceIEEE = a
	h.FrameControl = h.FrameControl.With(FlagSourceIEEE, a != nil)
}

// SetMulticast sets or clears (nil) the multicast control and flag.
func (h *Header) SetMulticast(m *MulticastControl) {
	h.MulticastControl = m
	h.FrameControl = h.FrameControl.With(FlagMulticast, m != nil)
}

// SetSourceRoute sets or clears (nil) the source route subframe and flag.
func (h *Header) SetSourceRoute(s *SourceRouteSubframe) {
	h.SourceRoute = s
	h.FrameControl = h.FrameControl.With(FlagSourceRoute, s != nil)
}

// Validate checks that every optional field matches its flag and that a
// source route holds exactly RelayCount relays, since decoding scopes the
// relay list by that count.
func (h *Header) Validate() error {
	fc := h.FrameControl
	switch {
	case fc.DestinationIEEE() != (h.DestinationIEEE != nil):
		return fmt.Errorf("%w: destination IEEE", ErrOptionalFieldMismatch)
	case fc.SourceIEEE() != (h.SourceIEEE != nil):
		return fmt.Errorf("%w: source IEEE", ErrOptionalFieldMismatch)
	case fc.Multicast() != (h.MulticastControl != nil):
		return fmt.Errorf("%w: multicast control", ErrOptionalFieldMismatch)
	case fc.SourceRoute() != (h.SourceRoute != nil):
		return fmt.Errorf("%w: source route", ErrOptionalFieldMismatch)
	}
	if sr := h.SourceRoute; sr != nil {
		switch {
		case int(sr.RelayCount) > MaxSourceRouteRelays:
			return ErrTooManyRelays
		case len(sr.RelayList)%2 != 0:
			return ErrOddRelayList
		case len(sr.RelayList) != 2*int(sr.RelayCount):
			return ErrRelayCountMismatch
		}
	}
	return nil
}

// Size returns the encoded size of the header.
func (h *Header) Size() int {
	size := MinHeaderSize
	if h.DestinationIEEE != nil {
		size += IEEEAddressSize
	}
	if h.SourceIEEE != nil {
		size += IEEEAddressSize
	}
	if h.MulticastControl != nil {
		size += MulticastControlSize
	}
	if h.SourceRoute != nil {
		size += h.SourceRoute.Size()
	}
	return size
}

// DecodeFrom reads the header and every optional field its flags announce.
func (h *Header) DecodeFrom(r *codec.Reader) error {
	var out Header
	if err := out.FrameControl.DecodeFrom(r); err != nil {
		return fmt.Errorf("nwk: frame control: %w", err)
	}
	if err := out.Destination.DecodeFrom(r); err != nil {
		return fmt.Errorf("nwk: destination address: %w", err)
	}
	if err := out.Source.DecodeFrom(r); err != nil {
		return fmt.Errorf("nwk: source address: %w", err)
	}
	radius, err := r.Uint8()
	if err != nil {
		return fmt.Errorf("nwk: radius: %w", err)
	}
	out.Radius = radius
	seq, err := r.Uint8()
	if err != nil {
		return fmt.Errorf("nwk: sequence number: %w", err)
	}
	out.SequenceNumber = seq

	fc := out.FrameControl
	if fc.DestinationIEEE() {
		out.DestinationIEEE = new(address.IEEEAddress)
		if err := out.DestinationIEEE.DecodeFrom(r); err != nil {
			return fmt.Errorf("nwk: destination IEEE address: %w", err)
		}
	}
	if fc.SourceIEEE() {
		out.SourceIEEE = new(address.IEEEAddress)
		if err := out.SourceIEEE.DecodeFrom(r); err != nil {
			return fmt.Errorf("nwk: source IEEE address: %w", err)
		}
	}
	if fc.Multicast() {
		out.MulticastControl = new(MulticastControl)
		if err := out.MulticastControl.DecodeFrom(r); err != nil {
			return fmt.Errorf("nwk: multicast control: %w", err)
		}
	}
	if fc.SourceRoute() {
		out.SourceRoute = new(SourceRouteSubframe)
		if err := out.SourceRoute.decodeScoped(r); err != nil {
			return err
		}
	}

	*h = out
	return nil
}

// EncodeTo writes the header. It fails with the Validate error if a flag
// and its optional field disagree or the source route is inconsistent.
func (h *Header) EncodeTo(w *codec.Writer) error {
	if err := h.Validate(); err != nil {
		return err
	}
	_ = h.FrameControl.EncodeTo(w)
	_ = h.Destination.EncodeTo(w)
	_ = h.Source.EncodeTo(w)
	w.PutUint8(h.Radius)
	w.PutUint8(h.SequenceNumber)
	if h.DestinationIEEE != nil {
		_ = h.DestinationIEEE.EncodeTo(w)
	}
	if h.SourceIEEE != nil {
		_ = h.SourceIEEE.EncodeTo(w)
	}
	if h.MulticastControl != nil {
		_ = h.MulticastControl.EncodeTo(w)
	}
	if h.SourceRoute != nil {
		if err := h.SourceRoute.EncodeTo(w); err != nil {
			return err
		}
	}
	return nil
}
