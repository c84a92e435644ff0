package codec

import "errors"

// Codec errors.
var (
	// ErrInsufficientBytes is returned when the input ends before a field
	// could be fully decoded.
	ErrInsufficientBytes = errors.New("codec: insufficient bytes")

	// ErrCapacityExceeded is returned when a variable length field is larger
	// than the fixed capacity reserved for it.
	ErrCapacityExceeded = errors.New("codec: capacity exceeded")

	// ErrMalformedTag is returned for tag values that cannot be mapped.
	// The exhaustive mappings in this module fall back to explicit Reserved
	// variants instead, so decoders only return it for invalid lengths.
	ErrMalformedTag = errors.New("codec: malformed tag")

	// ErrTrailingBytes is returned by DecodeExact when input remains after
	// the value was decoded.
	ErrTrailingBytes = errors.New("codec: trailing bytes")

	// ErrInvalidScope is returned when a negative scope length is requested.
	ErrInvalidScope = errors.New("codec: invalid scope")
)
