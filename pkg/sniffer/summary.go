package sniffer

import (
	"strings"
	"time"

	"github.com/backkem/zigbee/pkg/nwk"
	"github.com/backkem/zigbee/pkg/security"
)

// Summary is the JSON view of a received frame published to subscribers.
type Summary struct {
	CaptureID  string    `json:"capture_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	Peer       string    `json:"peer,omitempty"`

	FrameType       string   `json:"frame_type"`
	ProtocolVersion uint8    `json:"protocol_version"`
	Transmission    string   `json:"transmission"`
	DiscoverRoute   string   `json:"discover_route"`
	Destination     string   `json:"destination"`
	Source          string   `json:"source"`
	DestinationIEEE string   `json:"destination_ieee,omitempty"`
	SourceIEEE      string   `json:"source_ieee,omitempty"`
	Radius          uint8    `json:"radius"`
	Sequence        uint8    `json:"sequence"`
	Relays          []string `json:"relays,omitempty"`
	RelayIndex      *uint8   `json:"relay_index,omitempty"`

	Command       string `json:"command,omitempty"`
	PayloadLength int    `json:"payload_length"`

	Security *SecuritySummary `json:"security,omitempty"`
}

// SecuritySummary describes the auxiliary header of a secured frame.
type SecuritySummary struct {
	Level        string `json:"level"`
	Key          string `json:"key"`
	FrameCounter uint32 `json:"frame_counter"`
	Source       string `json:"source,omitempty"`
	KeySequence  *uint8 `json:"key_sequence,omitempty"`
	MICLength    int    `json:"mic_length"`
	// Counter is the frame counter freshness: new, duplicate or stale.
	Counter string `json:"counter,omitempty"`
}

// Topic returns the publish sub-topic for the summary's frame type.
func (s *Summary) Topic() string {
	return strings.ToLower(s.FrameType)
}

// Summarize builds a Summary from a decoded frame. sec is nil for
// unsecured frames.
func Summarize(f nwk.Frame, sec *security.SecuredPayload) *Summary {
	h := f.FrameHeader()
	fc := h.FrameControl

	s := &Summary{
		FrameType:       f.FrameType().String(),
		ProtocolVersion: fc.ProtocolVersion(),
		Transmission:    fc.TransmissionMethod().String(),
		DiscoverRoute:   fc.DiscoverRoute().String(),
		Destination:     h.Destination.String(),
		Source:          h.Source.String(),
		Radius:          h.Radius,
		Sequence:        h.SequenceNumber,
	}
	if h.DestinationIEEE != nil {
		s.DestinationIEEE = h.DestinationIEEE.String()
	}
	if h.SourceIEEE != nil {
		s.SourceIEEE = h.SourceIEEE.String()
	}
	if h.SourceRoute != nil {
		idx := h.SourceRoute.RelayIndex
		s.RelayIndex = &idx
		if relays, err := h.SourceRoute.Relays(); err == nil {
			for _, r := range relays {
				s.Relays = append(s.Relays, r.String())
			}
		}
	}

	switch v := f.(type) {
	case *nwk.DataFrame:
		s.PayloadLength = len(v.Payload)
	case *nwk.CommandFrame:
		s.PayloadLength = 1 + len(v.Payload)
		// The command identifier of a secured frame is encrypted.
		if sec == nil {
			s.Command = v.Command.String()
		}
	}

	if sec != nil {
		s.Security = &SecuritySummary{
			Level:        sec.Level.String(),
			Key:          sec.Aux.Control.KeyIdentifier().String(),
			FrameCounter: sec.Aux.FrameCounter,
			KeySequence:  sec.Aux.KeySequenceNumber,
			MICLength:    len(sec.MIC),
		}
		if sec.Aux.SourceAddress != nil {
			s.Security.Source = sec.Aux.SourceAddress.String()
		}
	}
	return s
}
