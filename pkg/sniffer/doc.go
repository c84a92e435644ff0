// Package sniffer implements the receive path of a NWK bridge.
//
// A Sniffer is installed as the transport.Handler of a UDP transport. For
// every datagram it:
//
//  1. Decodes the NWK frame (failures are counted by reason and dropped)
//  2. Splits the security auxiliary header off secured payloads
//  3. Stores the raw PDU in a capture.Storage
//  4. Publishes a JSON Summary
//  5. Dispatches the frame to registered FrameHandlers
//
// Nothing on this path panics on malformed input.
package sniffer
