package codec

import (
	"encoding/binary"
)

// Reader is a forward-only cursor over a byte slice.
//
// Every read either consumes exactly the bytes of the requested field or
// fails with ErrInsufficientBytes and leaves the cursor untouched.
type Reader struct {
	data []byte
	off  int
}

// NewReader creates a Reader positioned at the start of data.
// The Reader does not copy data; callers must not modify it while decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.off
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// take returns the next n bytes and advances the cursor.
func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidScope
	}
	if r.Len() < n {
		return nil, ErrInsufficientBytes
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Peek returns the next byte without consuming it.
func (r *Reader) Peek() (uint8, error) {
	if r.Len() < 1 {
		return 0, ErrInsufficientBytes
	}
	return r.data[r.off], nil
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int8 reads one byte as a signed integer.
func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

// Uint16 reads a little-endian 16-bit integer.
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Int16 reads a little-endian signed 16-bit integer.
func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

// Uint32 reads a little-endian 32-bit integer.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Int32 reads a little-endian signed 32-bit integer.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Uint64 reads a little-endian 64-bit integer.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Int64 reads a little-endian signed 64-bit integer.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// Bytes reads exactly n bytes and returns a copy of them.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Rest consumes every remaining byte of the current scope and returns a copy.
// It fails with ErrCapacityExceeded, consuming nothing, if more than max
// bytes remain. An empty remainder yields a nil slice.
func (r *Reader) Rest(max int) ([]byte, error) {
	n := r.Len()
	if n > max {
		return nil, ErrCapacityExceeded
	}
	if n == 0 {
		return nil, nil
	}
	return r.Bytes(n)
}

// Scope consumes the next n bytes and returns a Reader limited to them.
// Fields that consume "all remaining bytes" decoded through the returned
// Reader stop at the scope boundary instead of the end of the input.
func (r *Reader) Scope(n int) (*Reader, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	return NewReader(b), nil
}
