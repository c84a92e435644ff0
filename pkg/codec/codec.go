package codec

// Decoder is implemented by types that can be decoded from a Reader.
// DecodeFrom must consume exactly the bytes that belong to the value.
type Decoder interface {
	DecodeFrom(r *Reader) error
}

// Encoder is implemented by types that can write their canonical encoding.
type Encoder interface {
	EncodeTo(w *Writer) error
}

// Sizer reports the encoded size of a value. Encode uses it to size buffers.
type Sizer interface {
	Size() int
}

// Decode decodes v from the start of data.
// Returns the number of bytes consumed.
func Decode(data []byte, v Decoder) (int, error) {
	r := NewReader(data)
	if err := v.DecodeFrom(r); err != nil {
		return 0, err
	}
	return r.Offset(), nil
}

// DecodeExact decodes v from data and fails with ErrTrailingBytes unless
// every byte was consumed.
func DecodeExact(data []byte, v Decoder) error {
	n, err := Decode(data, v)
	if err != nil {
		return err
	}
	if n != len(data) {
		return ErrTrailingBytes
	}
	return nil
}

// Encode returns the canonical encoding of v.
func Encode(v Encoder) ([]byte, error) {
	hint := 0
	if s, ok := v.(Sizer); ok {
		hint = s.Size()
	}
	w := NewWriter(hint)
	if err := v.EncodeTo(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
