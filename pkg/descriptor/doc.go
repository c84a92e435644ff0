// Package descriptor implements the node, node power and simple
// descriptors a device reports through device discovery
// (ZigBee Specification Section 2.3.2).
//
// Multi-byte fields are little-endian. Enumerated sub-fields keep their raw
// value when it is outside the defined set; IsValid reports false and String
// returns "Reserved", and re-encoding reproduces the original bits.
package descriptor
