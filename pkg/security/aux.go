package security

import (
	"errors"
	"fmt"

	"github.com/backkem/zigbee/pkg/address"
	"github.com/backkem/zigbee/pkg/codec"
)

var (
	// ErrOptionalFieldMismatch is returned when encoding a header whose
	// security control disagrees with the optional fields that are set.
	ErrOptionalFieldMismatch = errors.New("security: optional field does not match security control")

	// ErrNoSourceAddress is returned when a nonce is requested from a
	// header without an extended source address.
	ErrNoSourceAddress = errors.New("security: no source address")
)

const (
	// MinAuxHeaderSize is the size of control + frame counter.
	MinAuxHeaderSize = 5

	// NonceSize is the size of the CCM* nonce.
	NonceSize = 13
)

// AuxFrameHeader is the auxiliary frame header (Section 4.5.1).
//
// Wire format (little-endian):
//
//	Security Control  1
//	Frame Counter     4
//	Source Address    8  (extended nonce)
//	Key Sequence      1  (key identifier == Network)
type AuxFrameHeader struct {
	Control           SecurityControl
	FrameCounter      uint32
	SourceAddress     *address.IEEEAddress
	KeySequenceNumber *uint8
}

// Validate checks that the optional fields match the security control.
func (h *AuxFrameHeader) Validate() error {
	if h.Control.ExtendedNonce() != (h.SourceAddress != nil) {
		return fmt.Errorf("%w: source address", ErrOptionalFieldMismatch)
	}
	if (h.Control.KeyIdentifier() == KeyNetwork) != (h.KeySequenceNumber != nil) {
		return fmt.Errorf("%w: key sequence number", ErrOptionalFieldMismatch)
	}
	return nil
}

// Size returns the encoded size of the header.
func (h *AuxFrameHeader) Size() int {
	size := MinAuxHeaderSize
	if h.SourceAddress != nil {
		size += 8
	}
	if h.KeySequenceNumber != nil {
		size++
	}
	return size
}

// DecodeFrom reads the header and the optional fields the control announces.
func (h *AuxFrameHeader) DecodeFrom(r *codec.Reader) error {
	var out AuxFrameHeader
	if err := out.Control.DecodeFrom(r); err != nil {
		return fmt.Errorf("security: control: %w", err)
	}
	fc, err := r.Uint32()
	if err != nil {
		return fmt.Errorf("security: frame counter: %w", err)
	}
	out.FrameCounter = fc

	if out.Control.ExtendedNonce() {
		out.SourceAddress = new(address.IEEEAddress)
		if err := out.SourceAddress.DecodeFrom(r); err != nil {
			return fmt.Errorf("security: source address: %w", err)
		}
	}
	if out.Control.KeyIdentifier() == KeyNetwork {
		seq, err := r.Uint8()
		if err != nil {
			return fmt.Errorf("security: key sequence number: %w", err)
		}
		out.KeySequenceNumber = &seq
	}

	*h = out
	return nil
}

// EncodeTo writes the header.
func (h *AuxFrameHeader) EncodeTo(w *codec.Writer) error {
	if err := h.Validate(); err != nil {
		return err
	}
	_ = h.Control.EncodeTo(w)
	w.PutUint32(h.FrameCounter)
	if h.SourceAddress != nil {
		_ = h.SourceAddress.EncodeTo(w)
	}
	if h.KeySequenceNumber != nil {
		w.PutUint8(*h.KeySequenceNumber)
	}
	return nil
}

// Nonce returns the CCM* nonce: source address, frame counter, security control.
//
// level replaces the security level in the control byte; deployed networks
// transmit level 0 and agree on the real level out of band.
func (h *AuxFrameHeader) Nonce(level SecurityLevel) ([NonceSize]byte, error) {
	var n [NonceSize]byte
	if h.SourceAddress == nil {
		return n, ErrNoSourceAddress
	}
	w := codec.NewWriter(NonceSize)
	_ = h.SourceAddress.EncodeTo(w)
	w.PutUint32(h.FrameCounter)
	_ = h.Control.WithLevel(level).EncodeTo(w)
	copy(n[:], w.Bytes())
	return n, nil
}

// SecuredPayload is a secured NWK payload split into its parts.
type SecuredPayload struct {
	Aux AuxFrameHeader
	// Level is the effective security level used for the split.
	Level SecurityLevel
	// Body is the encrypted (or authenticated-only) payload.
	Body []byte
	MIC  []byte
}

// SplitSecuredPayload decodes the auxiliary header at the start of payload
// and splits the rest into body and MIC.
//
// Networks commonly transmit security level 0 in the header; in that case
// fallback selects the MIC length. Fails with codec.ErrInsufficientBytes if
// the payload is shorter than the MIC.
func SplitSecuredPayload(payload []byte, fallback SecurityLevel) (*SecuredPayload, error) {
	r := codec.NewReader(payload)
	var aux AuxFrameHeader
	if err := aux.DecodeFrom(r); err != nil {
		return nil, err
	}

	level := aux.Control.Level()
	if level == LevelNone {
		level = fallback
	}

	rest, err := r.Bytes(r.Len())
	if err != nil {
		return nil, err
	}
	mic := level.MICLength()
	if len(rest) < mic {
		return nil, fmt.Errorf("security: MIC: %w", codec.ErrInsufficientBytes)
	}
	return &SecuredPayload{
		Aux:   aux,
		Level: level,
		Body:  rest[:len(rest)-mic],
		MIC:   rest[len(rest)-mic:],
	}, nil
}
