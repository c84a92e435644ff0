package security

import (
	"fmt"

	"github.com/backkem/zigbee/pkg/bitfield"
	"github.com/backkem/zigbee/pkg/codec"
)

// SecurityLevel is the 3-bit security level sub-field (Table 4-30).
// Every 3-bit value is defined.
type SecurityLevel uint8

const (
	LevelNone      SecurityLevel = 0b000
	LevelMIC32     SecurityLevel = 0b001
	LevelMIC64     SecurityLevel = 0b010
	LevelMIC128    SecurityLevel = 0b011
	LevelENC       SecurityLevel = 0b100
	LevelENCMIC32  SecurityLevel = 0b101
	LevelENCMIC64  SecurityLevel = 0b110
	LevelENCMIC128 SecurityLevel = 0b111
)

// MICLength returns the length in bytes of the message integrity code.
func (l SecurityLevel) MICLength() int {
	switch l & 0b011 {
	case 0b01:
		return 4
	case 0b10:
		return 8
	case 0b11:
		return 16
	default:
		return 0
	}
}

// Encrypted reports whether the level provides confidentiality.
func (l SecurityLevel) Encrypted() bool {
	return l&0b100 != 0
}

// String returns a human-readable name for the security level.
func (l SecurityLevel) String() string {
	switch l {
	case LevelNone:
		return "None"
	case LevelMIC32:
		return "MIC-32"
	case LevelMIC64:
		return "MIC-64"
	case LevelMIC128:
		return "MIC-128"
	case LevelENC:
		return "ENC"
	case LevelENCMIC32:
		return "ENC-MIC-32"
	case LevelENCMIC64:
		return "ENC-MIC-64"
	case LevelENCMIC128:
		return "ENC-MIC-128"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(l))
	}
}

// KeyIdentifier is the 2-bit key identifier sub-field (Table 4-31).
type KeyIdentifier uint8

const (
	KeyData      KeyIdentifier = 0b00
	KeyNetwork   KeyIdentifier = 0b01
	KeyTransport KeyIdentifier = 0b10
	KeyLoad      KeyIdentifier = 0b11
)

// String returns a human-readable name for the key identifier.
func (k KeyIdentifier) String() string {
	switch k {
	case KeyData:
		return "Data"
	case KeyNetwork:
		return "Network"
	case KeyTransport:
		return "KeyTransport"
	case KeyLoad:
		return "KeyLoad"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Security control sub-fields (Figure 4-19). Bits 6-7 are reserved.
var (
	scLevel         = bitfield.Bits(0, 3)
	scKeyIdentifier = bitfield.Bits(3, 2)
	scExtendedNonce = bitfield.Bit(5)
)

var securityControlLayout = bitfield.MustLayout(8, scLevel, scKeyIdentifier, scExtendedNonce)

// SecurityControl is the security control byte of the auxiliary header.
type SecurityControl uint8

// NewSecurityControl builds a security control byte.
func NewSecurityControl(level SecurityLevel, key KeyIdentifier, extendedNonce bool) SecurityControl {
	var v uint8
	v = bitfield.Set(v, scLevel, uint8(level))
	v = bitfield.Set(v, scKeyIdentifier, uint8(key))
	v = bitfield.With(v, scExtendedNonce.Offset, extendedNonce)
	return SecurityControl(v)
}

// Level returns the security level.
func (c SecurityControl) Level() SecurityLevel {
	return SecurityLevel(bitfield.Get(uint8(c), scLevel))
}

// KeyIdentifier returns the key identifier.
func (c SecurityControl) KeyIdentifier() KeyIdentifier {
	return KeyIdentifier(bitfield.Get(uint8(c), scKeyIdentifier))
}

// ExtendedNonce reports whether the source address is present in the
// auxiliary header.
func (c SecurityControl) ExtendedNonce() bool {
	return bitfield.IsSet(uint8(c), scExtendedNonce.Offset)
}

// WithLevel returns a copy with the security level replaced.
func (c SecurityControl) WithLevel(level SecurityLevel) SecurityControl {
	return SecurityControl(bitfield.Set(uint8(c), scLevel, uint8(level)))
}

// DecodeFrom reads the security control. Reserved bits are cleared.
func (c *SecurityControl) DecodeFrom(r *codec.Reader) error {
	v, err := r.Uint8()
	if err != nil {
		return err
	}
	*c = SecurityControl(bitfield.Clean(securityControlLayout, v))
	return nil
}

// EncodeTo writes the security control.
func (c SecurityControl) EncodeTo(w *codec.Writer) error {
	w.PutUint8(bitfield.Clean(securityControlLayout, uint8(c)))
	return nil
}
