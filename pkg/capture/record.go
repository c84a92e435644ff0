package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/backkem/zigbee/pkg/codec"
)

// Record encoding limits.
const (
	MaxPeerLength = 0xff
	MaxDataLength = 0xffff
)

// ErrRecordTooLarge is returned when a record field exceeds its length prefix.
var ErrRecordTooLarge = errors.New("capture: record field too large")

// Record is one captured frame.
type Record struct {
	ReceivedAt time.Time
	// Peer is the address the datagram arrived from.
	Peer string
	// Data is the raw NWK frame.
	Data []byte
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Data = append([]byte(nil), r.Data...)
	return out
}

// Size returns the encoded size.
func (r *Record) Size() int {
	return 8 + 1 + len(r.Peer) + 2 + len(r.Data)
}

// EncodeTo writes the record:
//
//	received-at unix nanos  8
//	peer length             1
//	peer                    n
//	data length             2
//	data                    m
func (r *Record) EncodeTo(w *codec.Writer) error {
	if len(r.Peer) > MaxPeerLength {
		return fmt.Errorf("%w: peer", ErrRecordTooLarge)
	}
	if len(r.Data) > MaxDataLength {
		return fmt.Errorf("%w: data", ErrRecordTooLarge)
	}
	w.PutInt64(r.ReceivedAt.UnixNano())
	w.PutUint8(uint8(len(r.Peer)))
	w.PutBytes([]byte(r.Peer))
	w.PutUint16(uint16(len(r.Data)))
	w.PutBytes(r.Data)
	return nil
}

// DecodeFrom reads a record.
func (r *Record) DecodeFrom(rd *codec.Reader) error {
	nanos, err := rd.Int64()
	if err != nil {
		return fmt.Errorf("capture: received at: %w", err)
	}
	peerLen, err := rd.Uint8()
	if err != nil {
		return fmt.Errorf("capture: peer length: %w", err)
	}
	peer, err := rd.Bytes(int(peerLen))
	if err != nil {
		return fmt.Errorf("capture: peer: %w", err)
	}
	dataLen, err := rd.Uint16()
	if err != nil {
		return fmt.Errorf("capture: data length: %w", err)
	}
	data, err := rd.Bytes(int(dataLen))
	if err != nil {
		return fmt.Errorf("capture: data: %w", err)
	}

	r.ReceivedAt = time.Unix(0, nanos)
	r.Peer = string(peer)
	r.Data = data
	return nil
}
