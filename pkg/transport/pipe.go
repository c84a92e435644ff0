package transport

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// Pipe is an in-memory datagram link between two endpoints built on pion's
// test.Bridge. It replaces a radio or UDP socket in tests.
//
// Delivery runs in a background goroutine unless the pipe is created with
// NewManualPipe, in which case Process moves queued packets.
type Pipe struct {
	bridge *test.Bridge

	mu       sync.Mutex
	dropRate float64
	rng      *rand.Rand
	closed   bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewPipe creates a pipe that delivers packets automatically.
func NewPipe() *Pipe {
	p := newPipe()
	p.wg.Add(1)
	go p.deliver(time.Millisecond)
	return p
}

// NewManualPipe creates a pipe that only delivers packets on Process.
func NewManualPipe() *Pipe {
	return newPipe()
}

func newPipe() *Pipe {
	return &Pipe{
		bridge: test.NewBridge(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		stopCh: make(chan struct{}),
	}
}

func (p *Pipe) deliver(interval time.Duration) {
	defer p.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.bridge.Tick()
		}
	}
}

// SetDropRate sets the probability (0.0-1.0) that a written packet is lost.
func (p *Pipe) SetDropRate(rate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropRate = rate
}

// Process delivers every queued packet and returns how many were moved.
func (p *Pipe) Process() int {
	count := 0
	for {
		n := p.bridge.Tick()
		if n == 0 {
			return count
		}
		count += n
	}
}

// PacketConns returns the two endpoints as net.PacketConns. Endpoint 0 is
// addressed as PipeAddr{ID: 0, Port: port} and endpoint 1 likewise.
func (p *Pipe) PacketConns(port int) (net.PacketConn, net.PacketConn) {
	a0 := PipeAddr{ID: 0, Port: port}
	a1 := PipeAddr{ID: 1, Port: port}
	return &PipePacketConn{conn: p.bridge.GetConn0(), local: a0, peer: a1, pipe: p},
		&PipePacketConn{conn: p.bridge.GetConn1(), local: a1, peer: a0, pipe: p}
}

// Close stops delivery and closes both endpoints.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.stopCh)
	p.mu.Unlock()
	p.wg.Wait()

	err0 := p.bridge.GetConn0().Close()
	err1 := p.bridge.GetConn1().Close()
	if err0 != nil {
		return err0
	}
	return err1
}

func (p *Pipe) drop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropRate > 0 && p.rng.Float64() < p.dropRate
}

// PipeAddr implements net.Addr for pipe endpoints.
type PipeAddr struct {
	ID   int
	Port int
}

// Network returns "pipe".
func (a PipeAddr) Network() string { return "pipe" }

// String returns the address as pipe:<id>:<port>.
func (a PipeAddr) String() string { return fmt.Sprintf("pipe:%d:%d", a.ID, a.Port) }

// PipePacketConn adapts one pipe endpoint to net.PacketConn so it can back
// a UDP transport. Writes always go to the single peer.
type PipePacketConn struct {
	conn  net.Conn
	local PipeAddr
	peer  PipeAddr
	pipe  *Pipe
}

var _ net.PacketConn = (*PipePacketConn)(nil)

// ReadFrom reads one packet; the source is always the peer endpoint.
func (c *PipePacketConn) ReadFrom(b []byte) (int, net.Addr, error) {
	n, err := c.conn.Read(b)
	return n, c.peer, err
}

// WriteTo writes one packet to the peer. addr is ignored.
func (c *PipePacketConn) WriteTo(b []byte, _ net.Addr) (int, error) {
	if c.pipe != nil && c.pipe.drop() {
		return len(b), nil
	}
	return c.conn.Write(b)
}

// Close closes the endpoint.
func (c *PipePacketConn) Close() error { return c.conn.Close() }

// LocalAddr returns the endpoint address.
func (c *PipePacketConn) LocalAddr() net.Addr { return c.local }

// SetDeadline sets the read and write deadlines.
func (c *PipePacketConn) SetDeadline(t time.Time) error { return c.conn.SetDeadline(t) }

// SetReadDeadline sets the read deadline.
func (c *PipePacketConn) SetReadDeadline(t time.Time) error { return c.conn.SetReadDeadline(t) }

// SetWriteDeadline sets the write deadline.
func (c *PipePacketConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
