package transport

import (
	"net"
	"time"
)

// Datagram is one received PDU. Data holds the raw NWK frame exactly as it
// arrived; decoding is left to the handler.
type Datagram struct {
	Data       []byte
	Peer       net.Addr
	ReceivedAt time.Time
}

// Handler is called for each received datagram on the read loop goroutine.
// Implementations should return quickly or hand off to another goroutine.
type Handler func(d *Datagram)

// ResolvePeer resolves a "host:port" string into a UDP peer address.
func ResolvePeer(addr string) (net.Addr, error) {
	if addr == "" {
		return nil, ErrInvalidAddress
	}
	a, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	return a, nil
}
