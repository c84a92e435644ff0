// Package nwk implements the network layer (NWK) frame format of the mesh
// stack as defined in ZigBee Specification Chapter 3.3.
//
// A NWK frame starts with a 16-bit FrameControl word. Its flags decide which
// optional header fields follow (extended addresses, multicast control,
// source route subframe) and its 2-bit frame type selects the body shape:
//
//	Data      header + payload
//	Command   header + command identifier + payload
//	Reserved  header only
//	InterPAN  header only
//
// Decode returns one of *DataFrame, *CommandFrame, *ReservedFrame or
// *InterPANFrame behind the Frame interface. Malformed input is reported as
// an error wrapping codec.ErrInsufficientBytes or codec.ErrCapacityExceeded;
// decoding never panics.
//
// All multi-byte fields are little-endian on the wire.
package nwk
