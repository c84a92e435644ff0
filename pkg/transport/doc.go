// Package transport moves raw NWK frames between the sniffer and the
// network. UDP carries one frame per datagram; Pipe provides an in-memory
// link with the same net.PacketConn surface for tests.
package transport
