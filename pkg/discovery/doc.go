// Package discovery advertises and browses NWK bridges over mDNS/DNS-SD.
//
// A bridge forwards raw NWK PDUs over UDP and registers itself as
// "_zbnwk._udp" in the "local." domain. The TXT record carries the NWK
// protocol version and, when known, the radio channel and PAN identifier:
//
//	proto=2 ch=15 pan=1a62
package discovery
