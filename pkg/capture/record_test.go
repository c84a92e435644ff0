package capture

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/backkem/zigbee/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEncoding(t *testing.T) {
	rec := Record{
		ReceivedAt: time.Unix(1700000000, 123456789),
		Peer:       "udp:127.0.0.1:17754",
		Data:       []byte{0x08, 0x00, 0xfc, 0xff},
	}

	data, err := codec.Encode(&rec)
	require.NoError(t, err)
	assert.Len(t, data, rec.Size())

	var out Record
	require.NoError(t, codec.DecodeExact(data, &out))
	assert.True(t, out.ReceivedAt.Equal(rec.ReceivedAt))
	assert.Equal(t, rec.Peer, out.Peer)
	assert.Equal(t, rec.Data, out.Data)
}

func TestRecordErrors(t *testing.T) {
	_, err := codec.Encode(&Record{Peer: strings.Repeat("x", MaxPeerLength+1)})
	assert.ErrorIs(t, err, ErrRecordTooLarge)

	_, err = codec.Encode(&Record{Data: make([]byte, MaxDataLength+1)})
	assert.ErrorIs(t, err, ErrRecordTooLarge)

	var rec Record
	_, err = codec.Decode([]byte{0x01, 0x02, 0x03}, &rec)
	assert.True(t, errors.Is(err, codec.ErrInsufficientBytes))
}

func TestRecordClone(t *testing.T) {
	rec := Record{Data: []byte{0x01}}
	clone := rec.Clone()
	clone.Data[0] = 0xff
	assert.Equal(t, byte(0x01), rec.Data[0])
}
