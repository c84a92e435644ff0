// Package bitfield provides typed access to named bits and bit ranges of
// fixed-width control words.
//
// Control words are plain unsigned integers. A Field names a contiguous
// range of bits by offset and width; Get extracts and right-aligns it, Set
// returns a copy of the word with the range replaced. Words are never
// mutated in place. A Layout collects the fields of one word, verifies that
// they do not overlap and knows which bits are reserved.
package bitfield

import (
	"errors"
	"fmt"
)

// Errors returned when building a Layout.
var (
	// ErrOverlap is returned when two fields of a layout share a bit.
	ErrOverlap = errors.New("bitfield: overlapping fields")

	// ErrOutOfRange is returned when a field does not fit in the word.
	ErrOutOfRange = errors.New("bitfield: field out of range")
)

// Word is the set of integer types used as control words.
type Word interface {
	~uint8 | ~uint16
}

// Field is a contiguous range of bits within a word.
type Field struct {
	Offset uint8
	Width  uint8
}

// Bit returns a single-bit field at pos.
func Bit(pos uint8) Field {
	return Field{Offset: pos, Width: 1}
}

// Bits returns a field covering width bits starting at offset.
func Bits(offset, width uint8) Field {
	return Field{Offset: offset, Width: width}
}

// Mask returns the bits covered by the field, in word position.
func (f Field) Mask() uint64 {
	return (uint64(1)<<f.Width - 1) << f.Offset
}

// String returns the field as a half-open bit range.
func (f Field) String() string {
	return fmt.Sprintf("[%d:%d)", f.Offset, f.Offset+f.Width)
}

// Get extracts the field from w, right-aligned.
func Get[W Word](w W, f Field) W {
	return W((uint64(w) & f.Mask()) >> f.Offset)
}

// Set returns w with the field replaced by v. Bits of v beyond the field
// width are discarded.
func Set[W Word](w W, f Field, v W) W {
	m := f.Mask()
	return W(uint64(w)&^m | (uint64(v)<<f.Offset)&m)
}

// IsSet reports whether the bit at pos is set.
func IsSet[W Word](w W, pos uint8) bool {
	return (uint64(w)>>pos)&1 != 0
}

// With returns w with the bit at pos set or cleared.
func With[W Word](w W, pos uint8, on bool) W {
	if on {
		return W(uint64(w) | uint64(1)<<pos)
	}
	return W(uint64(w) &^ (uint64(1) << pos))
}

// FromFlags builds a word with one bit set per flag. Each flag's numeric
// value is its bit position.
func FromFlags[W Word, F ~uint8](flags ...F) W {
	var w W
	for _, f := range flags {
		w = With(w, uint8(f), true)
	}
	return w
}

// Layout describes the assigned fields of a word of the given bit width.
type Layout struct {
	width    uint8
	assigned uint64
	fields   []Field
}

// NewLayout validates that every field fits in width bits and that no two
// fields overlap.
func NewLayout(width uint8, fields ...Field) (Layout, error) {
	l := Layout{width: width, fields: append([]Field(nil), fields...)}
	for _, f := range fields {
		if f.Width == 0 || int(f.Offset)+int(f.Width) > int(width) {
			return Layout{}, fmt.Errorf("%w: %s in %d-bit word", ErrOutOfRange, f, width)
		}
		if l.assigned&f.Mask() != 0 {
			return Layout{}, fmt.Errorf("%w: %s", ErrOverlap, f)
		}
		l.assigned |= f.Mask()
	}
	return l, nil
}

// MustLayout is like NewLayout but panics on error. It is intended for
// package-level layout declarations.
func MustLayout(width uint8, fields ...Field) Layout {
	l, err := NewLayout(width, fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// Width returns the word width in bits.
func (l Layout) Width() uint8 {
	return l.width
}

// Fields returns the fields of the layout in declaration order.
func (l Layout) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

// Reserved returns the mask of bits not covered by any field.
func (l Layout) Reserved() uint64 {
	return (uint64(1)<<l.width - 1) &^ l.assigned
}

// Clean clears the reserved bits of w.
func Clean[W Word](l Layout, w W) W {
	return W(uint64(w) & l.assigned)
}
