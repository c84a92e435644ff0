package codec

import (
	"encoding/binary"
)

// Writer accumulates the encoding of outbound values.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with room for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the encoded bytes. The slice aliases the Writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// PutUint8 appends one byte.
func (w *Writer) PutUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// PutInt8 appends one signed byte.
func (w *Writer) PutInt8(v int8) {
	w.PutUint8(uint8(v))
}

// PutUint16 appends a little-endian 16-bit integer.
func (w *Writer) PutUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// PutInt16 appends a little-endian signed 16-bit integer.
func (w *Writer) PutInt16(v int16) {
	w.PutUint16(uint16(v))
}

// PutUint32 appends a little-endian 32-bit integer.
func (w *Writer) PutUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// PutInt32 appends a little-endian signed 32-bit integer.
func (w *Writer) PutInt32(v int32) {
	w.PutUint32(uint32(v))
}

// PutUint64 appends a little-endian 64-bit integer.
func (w *Writer) PutUint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// PutInt64 appends a little-endian signed 64-bit integer.
func (w *Writer) PutInt64(v int64) {
	w.PutUint64(uint64(v))
}

// PutBytes appends b verbatim.
func (w *Writer) PutBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// PutBounded appends b after checking it fits in max bytes.
// It is the encoding counterpart of Reader.Rest.
func (w *Writer) PutBounded(b []byte, max int) error {
	if len(b) > max {
		return ErrCapacityExceeded
	}
	w.PutBytes(b)
	return nil
}
