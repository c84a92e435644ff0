package discovery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/backkem/zigbee/pkg/nwk"
)

// TXT record keys.
const (
	TXTKeyProtocol = "proto"
	TXTKeyChannel  = "ch"
	TXTKeyPANID    = "pan"
)

// IEEE 802.15.4 2.4 GHz channel range.
const (
	MinChannel = 11
	MaxChannel = 26
)

// BridgeTXT is the TXT record of a bridge.
type BridgeTXT struct {
	// ProtocolVersion is the NWK protocol version the bridge forwards.
	ProtocolVersion uint8

	// Channel is the radio channel, or 0 if unknown.
	Channel uint8

	// PANID is the network PAN identifier. Only encoded when HasPANID is set.
	PANID    uint16
	HasPANID bool
}

// DefaultBridgeTXT returns a TXT record for the current protocol version.
func DefaultBridgeTXT() BridgeTXT {
	return BridgeTXT{ProtocolVersion: nwk.ProtocolVersion}
}

// Validate checks the record fields.
func (t *BridgeTXT) Validate() error {
	if t.ProtocolVersion == 0 || t.ProtocolVersion > 0x0f {
		return fmt.Errorf("%w: protocol version %d", ErrInvalidTXTRecord, t.ProtocolVersion)
	}
	if t.Channel != 0 && (t.Channel < MinChannel || t.Channel > MaxChannel) {
		return fmt.Errorf("%w: channel %d", ErrInvalidTXTRecord, t.Channel)
	}
	return nil
}

// Encode returns the record as key=value strings.
func (t *BridgeTXT) Encode() []string {
	records := []string{fmt.Sprintf("%s=%d", TXTKeyProtocol, t.ProtocolVersion)}
	if t.Channel != 0 {
		records = append(records, fmt.Sprintf("%s=%d", TXTKeyChannel, t.Channel))
	}
	if t.HasPANID {
		records = append(records, fmt.Sprintf("%s=%04x", TXTKeyPANID, t.PANID))
	}
	return records
}

// ParseTXT parses raw TXT record strings into a map. Entries without a
// key are skipped.
func ParseTXT(records []string) map[string]string {
	result := make(map[string]string)
	for _, record := range records {
		if idx := strings.IndexByte(record, '='); idx > 0 {
			result[record[:idx]] = record[idx+1:]
		}
	}
	return result
}

// ParseBridgeTXT parses raw TXT records. The protocol key is required;
// unknown keys are ignored.
func ParseBridgeTXT(records []string) (BridgeTXT, error) {
	m := ParseTXT(records)

	var t BridgeTXT
	proto, ok := m[TXTKeyProtocol]
	if !ok {
		return t, fmt.Errorf("%w: missing %s", ErrInvalidTXTRecord, TXTKeyProtocol)
	}
	v, err := strconv.ParseUint(proto, 10, 8)
	if err != nil {
		return t, fmt.Errorf("%w: %s: %v", ErrInvalidTXTRecord, TXTKeyProtocol, err)
	}
	t.ProtocolVersion = uint8(v)

	if ch, ok := m[TXTKeyChannel]; ok {
		v, err := strconv.ParseUint(ch, 10, 8)
		if err != nil {
			return t, fmt.Errorf("%w: %s: %v", ErrInvalidTXTRecord, TXTKeyChannel, err)
		}
		t.Channel = uint8(v)
	}

	if pan, ok := m[TXTKeyPANID]; ok {
		v, err := strconv.ParseUint(pan, 16, 16)
		if err != nil {
			return t, fmt.Errorf("%w: %s: %v", ErrInvalidTXTRecord, TXTKeyPANID, err)
		}
		t.PANID = uint16(v)
		t.HasPANID = true
	}

	return t, t.Validate()
}
