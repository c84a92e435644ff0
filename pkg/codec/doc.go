// Package codec provides the byte-level building blocks used by every wire
// format in this module.
//
// A Reader is a forward-only cursor over a received buffer. Composite types
// decode by threading a single Reader through their fields in declaration
// order, so each field starts exactly where the previous one stopped. A
// Writer appends the canonical encoding of outbound values.
//
// All multi-byte integers are little-endian on the wire. Decoding never
// allocates more than a caller-supplied capacity: variable length trailers
// are read with Reader.Rest, which fails with ErrCapacityExceeded instead of
// truncating.
package codec
