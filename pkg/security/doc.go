// Package security implements the auxiliary frame header that precedes a
// secured NWK payload (ZigBee Specification Section 4.5.1).
//
// The header reuses the NWK conditional-field pattern: a SecurityControl
// byte decides whether an extended source address and a key sequence
// number follow the frame counter.
//
// Encryption and MIC verification are out of scope; the package exposes
// the CCM* nonce layout and the split of a secured payload so a key holder
// can perform them.
package security
