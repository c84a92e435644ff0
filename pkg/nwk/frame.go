package nwk

import (
	"fmt"

	"github.com/backkem/zigbee/pkg/codec"
)

// Frame is a decoded NWK frame. The concrete type is one of *DataFrame,
// *CommandFrame, *ReservedFrame or *InterPANFrame.
type Frame interface {
	// FrameHeader returns the frame's header.
	FrameHeader() *Header
	// FrameType returns the frame type recorded in the frame control.
	FrameType() FrameType
	// Size returns the encoded size of the frame.
	Size() int
	// EncodeTo writes the frame.
	EncodeTo(w *codec.Writer) error

	frame()
}

// DataFrame carries an upper-layer payload. An empty payload decodes as
// nil; an empty non-nil slice encodes the same as nil.
type DataFrame struct {
	Header  Header
	Payload []byte
}

// CommandFrame carries a NWK command. Payload holds the bytes after the
// command identifier and, like DataFrame.Payload, is nil when empty.
type CommandFrame struct {
	Header  Header
	Command CommandID
	Payload []byte
}

// ReservedFrame is a frame with the reserved frame type. Only the header
// is decoded.
type ReservedFrame struct {
	Header Header
}

// InterPANFrame is an Inter-PAN frame. Only the header is decoded.
type InterPANFrame struct {
	Header Header
}

// NewDataFrame returns a data frame whose frame type is forced to Data.
func NewDataFrame(h Header, payload []byte) *DataFrame {
	h.FrameControl = h.FrameControl.WithFrameType(FrameTypeData)
	return &DataFrame{Header: h, Payload: payload}
}

// NewCommandFrame returns a command frame whose frame type is forced to Command.
func NewCommandFrame(h Header, id CommandID, payload []byte) *CommandFrame {
	h.FrameControl = h.FrameControl.WithFrameType(FrameTypeCommand)
	return &CommandFrame{Header: h, Command: id, Payload: payload}
}

func (f *DataFrame) frame()     {}
func (f *CommandFrame) frame()  {}
func (f *ReservedFrame) frame() {}
func (f *InterPANFrame) frame() {}

func (f *DataFrame) FrameHeader() *Header     { return &f.Header }
func (f *CommandFrame) FrameHeader() *Header  { return &f.Header }
func (f *ReservedFrame) FrameHeader() *Header { return &f.Header }
func (f *InterPANFrame) FrameHeader() *Header { return &f.Header }

func (f *DataFrame) FrameType() FrameType     { return f.Header.FrameControl.FrameType() }
func (f *CommandFrame) FrameType() FrameType  { return f.Header.FrameControl.FrameType() }
func (f *ReservedFrame) FrameType() FrameType { return f.Header.FrameControl.FrameType() }
func (f *InterPANFrame) FrameType() FrameType { return f.Header.FrameControl.FrameType() }

func (f *DataFrame) Size() int     { return f.Header.Size() + len(f.Payload) }
func (f *CommandFrame) Size() int  { return f.Header.Size() + 1 + len(f.Payload) }
func (f *ReservedFrame) Size() int { return f.Header.Size() }
func (f *InterPANFrame) Size() int { return f.Header.Size() }

// EncodeTo writes the header followed by the payload.
func (f *DataFrame) EncodeTo(w *codec.Writer) error {
	if f.FrameType() != FrameTypeData {
		return ErrFrameTypeMismatch
	}
	if err := f.Header.EncodeTo(w); err != nil {
		return err
	}
	if err := w.PutBounded(f.Payload, MaxPayloadSize); err != nil {
		return fmt.Errorf("nwk: payload: %w", err)
	}
	return nil
}

// EncodeTo writes the header, the command identifier and the payload.
func (f *CommandFrame) EncodeTo(w *codec.Writer) error {
	if f.FrameType() != FrameTypeCommand {
		return ErrFrameTypeMismatch
	}
	if err := f.Header.EncodeTo(w); err != nil {
		return err
	}
	w.PutUint8(uint8(f.Command))
	if err := w.PutBounded(f.Payload, MaxPayloadSize); err != nil {
		return fmt.Errorf("nwk: payload: %w", err)
	}
	return nil
}

// EncodeTo writes the header.
func (f *ReservedFrame) EncodeTo(w *codec.Writer) error {
	if f.FrameType() != FrameTypeReserved {
		return ErrFrameTypeMismatch
	}
	return f.Header.EncodeTo(w)
}

// EncodeTo writes the header.
func (f *InterPANFrame) EncodeTo(w *codec.Writer) error {
	if f.FrameType() != FrameTypeInterPAN {
		return ErrFrameTypeMismatch
	}
	return f.Header.EncodeTo(w)
}

// Decode parses a NWK frame.
//
// Data and command payloads consume every byte after the header and fail
// with codec.ErrCapacityExceeded beyond MaxPayloadSize. Reserved and
// Inter-PAN frames keep only the header; trailing bytes are ignored.
func Decode(data []byte) (Frame, error) {
	r := codec.NewReader(data)

	var h Header
	if err := h.DecodeFrom(r); err != nil {
		return nil, err
	}

	switch h.FrameControl.FrameType() {
	case FrameTypeData:
		payload, err := r.Rest(MaxPayloadSize)
		if err != nil {
			return nil, fmt.Errorf("nwk: payload: %w", err)
		}
		return &DataFrame{Header: h, Payload: payload}, nil

	case FrameTypeCommand:
		id, err := r.Uint8()
		if err != nil {
			return nil, fmt.Errorf("nwk: command identifier: %w", err)
		}
		payload, err := r.Rest(MaxPayloadSize)
		if err != nil {
			return nil, fmt.Errorf("nwk: payload: %w", err)
		}
		return &CommandFrame{Header: h, Command: CommandID(id), Payload: payload}, nil

	case FrameTypeReserved:
		return &ReservedFrame{Header: h}, nil

	default:
		return &InterPANFrame{Header: h}, nil
	}
}

// Encode returns the wire encoding of f.
func Encode(f Frame) ([]byte, error) {
	if f == nil {
		return nil, ErrNilFrame
	}
	return codec.Encode(f)
}
