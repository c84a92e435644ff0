package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/logging"
)

const (
	// DefaultPort is the default UDP port for NWK frame exchange.
	DefaultPort = 17754

	// MaxDatagramSize is the largest accepted datagram. It matches the IPv6
	// minimum MTU so a frame is never fragmented.
	MaxDatagramSize = 1280
)

// UDP carries one NWK frame per datagram over a net.PacketConn.
// A read loop hands every datagram to the configured Handler.
type UDP struct {
	conn    net.PacketConn
	handler Handler
	closeCh chan struct{}
	wg      sync.WaitGroup
	log     logging.LeveledLogger

	received atomic.Uint64
	sent     atomic.Uint64

	mu      sync.RWMutex
	started bool
	closed  bool
}

// UDPConfig configures the UDP transport.
type UDPConfig struct {
	// Conn is an optional pre-existing PacketConn, such as a PipePacketConn.
	// If nil, a socket is opened on ListenAddr.
	Conn net.PacketConn

	// ListenAddr is the address to listen on (e.g., ":17754").
	// Ignored if Conn is provided. Empty selects an ephemeral port.
	ListenAddr string

	// Handler is called for each received datagram. Required.
	Handler Handler

	// LoggerFactory creates the "transport-udp" logger.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// NewUDP creates a UDP transport. The read loop does not run until Start.
func NewUDP(config UDPConfig) (*UDP, error) {
	if config.Handler == nil {
		return nil, ErrNoHandler
	}

	u := &UDP{
		conn:    config.Conn,
		handler: config.Handler,
		closeCh: make(chan struct{}),
	}
	if config.LoggerFactory != nil {
		u.log = config.LoggerFactory.NewLogger("transport-udp")
	}

	if u.conn == nil {
		addr := config.ListenAddr
		if addr == "" {
			addr = ":0"
		}
		conn, err := net.ListenPacket("udp", addr)
		if err != nil {
			return nil, err
		}
		u.conn = conn
	}

	return u, nil
}

// Start launches the read loop.
func (u *UDP) Start() error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return ErrClosed
	}
	if u.started {
		u.mu.Unlock()
		return ErrAlreadyStarted
	}
	u.started = true
	u.mu.Unlock()

	if u.log != nil {
		u.log.Infof("listening for NWK frames on %s", u.conn.LocalAddr())
	}

	u.wg.Add(1)
	go u.readLoop()
	return nil
}

// Run starts the transport and blocks until ctx is done, then stops it.
func (u *UDP) Run(ctx context.Context) error {
	if err := u.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	if err := u.Stop(); err != nil && err != ErrClosed {
		return err
	}
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (u *UDP) Stop() error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return ErrClosed
	}
	u.closed = true
	u.mu.Unlock()

	if u.log != nil {
		u.log.Infof("stopping after %d received, %d sent", u.received.Load(), u.sent.Load())
	}

	close(u.closeCh)
	_ = u.conn.SetReadDeadline(time.Now())
	err := u.conn.Close()
	u.wg.Wait()
	return err
}

// Send writes one datagram to addr.
func (u *UDP) Send(data []byte, addr net.Addr) error {
	u.mu.RLock()
	closed := u.closed
	u.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if addr == nil {
		return ErrInvalidAddress
	}
	if len(data) > MaxDatagramSize {
		return ErrDatagramTooLarge
	}

	if _, err := u.conn.WriteTo(data, addr); err != nil {
		if u.log != nil {
			u.log.Warnf("send to %v failed: %v", addr, err)
		}
		return err
	}
	u.sent.Add(1)
	if u.log != nil {
		u.log.Tracef("sent %d bytes to %v", len(data), addr)
	}
	return nil
}

// LocalAddr returns the local address of the connection.
func (u *UDP) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

// Received returns the number of datagrams handed to the handler.
func (u *UDP) Received() uint64 {
	return u.received.Load()
}

func (u *UDP) readLoop() {
	defer u.wg.Done()

	buf := make([]byte, MaxDatagramSize)
	for {
		select {
		case <-u.closeCh:
			return
		default:
		}

		n, addr, err := u.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-u.closeCh:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
				if u.log != nil {
					u.log.Warnf("connection closed: %v", err)
				}
				return
			}
			if u.log != nil {
				u.log.Warnf("read error: %v", err)
			}
			continue
		}
		if n == 0 {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		u.received.Add(1)
		if u.log != nil {
			u.log.Tracef("received %d bytes from %v", n, addr)
		}

		u.handler(&Datagram{Data: data, Peer: addr, ReceivedAt: time.Now()})
	}
}
