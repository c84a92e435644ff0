package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestReaderPrimitives(t *testing.T) {
	data := []byte{
		0x7f,
		0x34, 0x12,
		0x78, 0x56, 0x34, 0x12,
		0x66, 0x71, 0x9a, 0x2a, 0x00, 0x4b, 0x12, 0x00,
	}
	r := NewReader(data)

	u8, err := r.Uint8()
	if err != nil || u8 != 0x7f {
		t.Fatalf("Uint8() = %#x, %v", u8, err)
	}
	u16, err := r.Uint16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("Uint16() = %#x, %v", u16, err)
	}
	u32, err := r.Uint32()
	if err != nil || u32 != 0x12345678 {
		t.Fatalf("Uint32() = %#x, %v", u32, err)
	}
	u64, err := r.Uint64()
	if err != nil || u64 != 0x00124b002a9a7166 {
		t.Fatalf("Uint64() = %#x, %v", u64, err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	if r.Offset() != len(data) {
		t.Errorf("Offset() = %d, want %d", r.Offset(), len(data))
	}
}

func TestReaderSigned(t *testing.T) {
	r := NewReader([]byte{0xff, 0xfe, 0xff, 0xfd, 0xff, 0xff, 0xff})

	i8, _ := r.Int8()
	if i8 != -1 {
		t.Errorf("Int8() = %d, want -1", i8)
	}
	i16, _ := r.Int16()
	if i16 != -2 {
		t.Errorf("Int16() = %d, want -2", i16)
	}
	i32, _ := r.Int32()
	if i32 != -3 {
		t.Errorf("Int32() = %d, want -3", i32)
	}
}

func TestReaderInsufficientBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(r *Reader) error
	}{
		{"uint8 empty", nil, func(r *Reader) error { _, err := r.Uint8(); return err }},
		{"uint16 short", []byte{0x01}, func(r *Reader) error { _, err := r.Uint16(); return err }},
		{"uint32 short", []byte{1, 2, 3}, func(r *Reader) error { _, err := r.Uint32(); return err }},
		{"uint64 short", []byte{1, 2, 3, 4, 5, 6, 7}, func(r *Reader) error { _, err := r.Uint64(); return err }},
		{"bytes short", []byte{1}, func(r *Reader) error { _, err := r.Bytes(2); return err }},
		{"scope short", []byte{1}, func(r *Reader) error { _, err := r.Scope(4); return err }},
		{"peek empty", []byte{}, func(r *Reader) error { _, err := r.Peek(); return err }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(tc.data)
			err := tc.read(r)
			if !errors.Is(err, ErrInsufficientBytes) {
				t.Fatalf("error = %v, want %v", err, ErrInsufficientBytes)
			}
			if r.Offset() != 0 {
				t.Errorf("failed read consumed %d bytes", r.Offset())
			}
		})
	}
}

func TestReaderRest(t *testing.T) {
	t.Run("within capacity", func(t *testing.T) {
		r := NewReader([]byte{0x01, 0x02, 0x03})
		_, _ = r.Uint8()
		got, err := r.Rest(4)
		if err != nil {
			t.Fatalf("Rest() error = %v", err)
		}
		if !bytes.Equal(got, []byte{0x02, 0x03}) {
			t.Errorf("Rest() = %x", got)
		}
		if r.Len() != 0 {
			t.Errorf("Len() after Rest = %d", r.Len())
		}
	})

	t.Run("capacity exceeded", func(t *testing.T) {
		r := NewReader(make([]byte, 5))
		_, err := r.Rest(4)
		if !errors.Is(err, ErrCapacityExceeded) {
			t.Fatalf("Rest() error = %v, want %v", err, ErrCapacityExceeded)
		}
		if r.Offset() != 0 {
			t.Errorf("Rest() consumed %d bytes on failure", r.Offset())
		}
	})

	t.Run("empty", func(t *testing.T) {
		got, err := NewReader(nil).Rest(0)
		if err != nil || got != nil {
			t.Errorf("Rest() = %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("copies input", func(t *testing.T) {
		src := []byte{0xaa}
		got, _ := NewReader(src).Rest(1)
		src[0] = 0x00
		if got[0] != 0xaa {
			t.Error("Rest() aliases the input buffer")
		}
	})
}

func TestReaderScope(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04})

	sub, err := r.Scope(2)
	if err != nil {
		t.Fatalf("Scope() error = %v", err)
	}
	rest, err := sub.Rest(16)
	if err != nil {
		t.Fatalf("sub.Rest() error = %v", err)
	}
	if !bytes.Equal(rest, []byte{0x01, 0x02}) {
		t.Errorf("sub.Rest() = %x, want 0102", rest)
	}
	if r.Len() != 2 {
		t.Errorf("parent Len() = %d, want 2", r.Len())
	}

	if _, err := r.Scope(-1); !errors.Is(err, ErrInvalidScope) {
		t.Errorf("Scope(-1) error = %v, want %v", err, ErrInvalidScope)
	}
}
