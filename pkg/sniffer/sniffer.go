package sniffer

import (
	"sync"

	"github.com/backkem/zigbee/pkg/capture"
	"github.com/backkem/zigbee/pkg/nwk"
	"github.com/backkem/zigbee/pkg/security"
	"github.com/backkem/zigbee/pkg/transport"
	"github.com/pion/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// Publisher publishes a value under a sub-topic. mqtt.Publisher satisfies it.
type Publisher interface {
	Publish(topic string, v any) error
}

// Frame is a decoded frame delivered to handlers.
type Frame struct {
	Frame    nwk.Frame
	Datagram *transport.Datagram
	// Secured is set when the security flag was set and the auxiliary
	// header could be split off the payload.
	Secured *security.SecuredPayload
	// Freshness classifies the frame counter of a secured frame that
	// carries its extended source address.
	Freshness security.Freshness
	Summary   *Summary
}

// FrameHandler receives every successfully decoded frame.
type FrameHandler func(f *Frame)

// Config configures a Sniffer.
type Config struct {
	// Storage receives the raw PDU of every decoded frame. Optional.
	Storage capture.Storage

	// Publisher receives a Summary of every decoded frame. Optional.
	Publisher Publisher

	// Registerer registers the sniffer's metrics. If nil, metrics are
	// collected but not registered.
	Registerer prometheus.Registerer

	// FallbackLevel is the security level used to size the MIC when the
	// auxiliary header carries level 0.
	FallbackLevel security.SecurityLevel

	// MaxCounterSources bounds the replay detection table. Default: 1024.
	MaxCounterSources int

	// LoggerFactory creates the "sniffer" logger. If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Sniffer decodes received datagrams and fans them out.
type Sniffer struct {
	storage   capture.Storage
	publisher Publisher
	fallback  security.SecurityLevel
	counters  *security.CounterTable
	metrics   *Metrics
	log       logging.LeveledLogger

	mu       sync.RWMutex
	handlers []FrameHandler
}

// New creates a sniffer.
func New(config Config) *Sniffer {
	maxSources := config.MaxCounterSources
	if maxSources == 0 {
		maxSources = 1024
	}
	s := &Sniffer{
		storage:   config.Storage,
		publisher: config.Publisher,
		fallback:  config.FallbackLevel,
		counters:  security.NewCounterTable(maxSources),
		metrics:   NewMetrics(config.Registerer),
	}
	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("sniffer")
	}
	return s
}

// OnFrame registers a handler for decoded frames.
func (s *Sniffer) OnFrame(h FrameHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

// HandleMessage processes one datagram. It has the transport.Handler
// signature so it can be installed directly on a transport.
func (s *Sniffer) HandleMessage(d *transport.Datagram) {
	f, err := nwk.Decode(d.Data)
	if err != nil {
		s.metrics.decodeErrorsTotal.WithLabelValues(reason(err)).Inc()
		if s.log != nil {
			s.log.Debugf("drop %d bytes from %v: %v", len(d.Data), d.Peer, err)
		}
		return
	}

	frame := &Frame{Frame: f, Datagram: d}
	s.metrics.framesTotal.WithLabelValues(f.FrameType().String()).Inc()
	s.metrics.payloadBytes.Observe(float64(payloadLen(f)))

	if f.FrameHeader().FrameControl.Security() {
		frame.Secured = s.splitSecured(f)
	}

	frame.Summary = Summarize(f, frame.Secured)
	if sec := frame.Secured; sec != nil && sec.Aux.SourceAddress != nil {
		frame.Freshness = s.counters.Check(*sec.Aux.SourceAddress, sec.Aux.FrameCounter)
		frame.Summary.Security.Counter = frame.Freshness.String()
		if frame.Freshness != security.CounterNew {
			s.metrics.replayedTotal.WithLabelValues(frame.Freshness.String()).Inc()
			if s.log != nil {
				s.log.Debugf("%s frame counter %d from %s",
					frame.Freshness, sec.Aux.FrameCounter, sec.Aux.SourceAddress)
			}
		}
	}
	frame.Summary.ReceivedAt = d.ReceivedAt
	if d.Peer != nil {
		frame.Summary.Peer = d.Peer.String()
	}

	if s.storage != nil {
		id, err := s.storage.Save(capture.Record{
			ReceivedAt: d.ReceivedAt,
			Peer:       frame.Summary.Peer,
			Data:       d.Data,
		})
		if err != nil {
			s.metrics.captureErrors.Inc()
			if s.log != nil {
				s.log.Warnf("capture failed: %v", err)
			}
		} else {
			frame.Summary.CaptureID = id.String()
		}
	}

	if s.log != nil {
		h := f.FrameHeader()
		s.log.Debugf("%s frame %s -> %s seq=%d radius=%d",
			f.FrameType(), h.Source, h.Destination, h.SequenceNumber, h.Radius)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(frame.Summary.Topic(), frame.Summary); err != nil {
			s.metrics.publishErrors.Inc()
			if s.log != nil {
				s.log.Warnf("publish failed: %v", err)
			}
		}
	}

	s.mu.RLock()
	handlers := make([]FrameHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	for _, h := range handlers {
		h(frame)
	}
}

// splitSecured splits the auxiliary header off a secured frame, counting
// failures as decode errors.
func (s *Sniffer) splitSecured(f nwk.Frame) *security.SecuredPayload {
	sec, err := SplitSecured(f, s.fallback)
	if err != nil {
		s.metrics.decodeErrorsTotal.WithLabelValues(ReasonSecurityHeader).Inc()
		if s.log != nil {
			s.log.Debugf("security header: %v", err)
		}
		return nil
	}
	if sec != nil {
		s.metrics.securedTotal.WithLabelValues(sec.Level.String()).Inc()
	}
	return sec
}

// SplitSecured decodes the auxiliary header at the start of a secured
// frame's payload. The byte decoded as a command identifier belongs to the
// auxiliary header when the frame is secured. Frames without a payload
// return nil.
func SplitSecured(f nwk.Frame, fallback security.SecurityLevel) (*security.SecuredPayload, error) {
	var payload []byte
	switch v := f.(type) {
	case *nwk.DataFrame:
		payload = v.Payload
	case *nwk.CommandFrame:
		payload = append([]byte{byte(v.Command)}, v.Payload...)
	default:
		return nil, nil
	}
	return security.SplitSecuredPayload(payload, fallback)
}

func payloadLen(f nwk.Frame) int {
	switch v := f.(type) {
	case *nwk.DataFrame:
		return len(v.Payload)
	case *nwk.CommandFrame:
		return 1 + len(v.Payload)
	}
	return 0
}
