package sniffer

import (
	"errors"

	"github.com/backkem/zigbee/pkg/codec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decode error reasons used as the "reason" label.
const (
	ReasonInsufficientBytes = "insufficient_bytes"
	ReasonCapacityExceeded  = "capacity_exceeded"
	ReasonSecurityHeader    = "security_header"
	ReasonOther             = "other"
)

// Metrics holds the sniffer's Prometheus collectors.
type Metrics struct {
	framesTotal       *prometheus.CounterVec
	decodeErrorsTotal *prometheus.CounterVec
	securedTotal      *prometheus.CounterVec
	replayedTotal     *prometheus.CounterVec
	captureErrors     prometheus.Counter
	publishErrors     prometheus.Counter
	payloadBytes      prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg registers nothing, which keeps tests independent.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		framesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zigbee_nwk_frames_total",
				Help: "Total number of decoded NWK frames",
			},
			[]string{"type"},
		),
		decodeErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zigbee_nwk_decode_errors_total",
				Help: "Total number of PDUs that failed to decode",
			},
			[]string{"reason"},
		),
		securedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zigbee_nwk_secured_frames_total",
				Help: "Total number of frames with the security flag set",
			},
			[]string{"level"},
		),
		replayedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zigbee_nwk_replayed_frames_total",
				Help: "Total number of secured frames whose frame counter was not new",
			},
			[]string{"freshness"},
		),
		captureErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "zigbee_nwk_capture_errors_total",
				Help: "Total number of PDUs that could not be stored",
			},
		),
		publishErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "zigbee_nwk_publish_errors_total",
				Help: "Total number of summaries that could not be published",
			},
		),
		payloadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "zigbee_nwk_payload_bytes",
				Help:    "Size of decoded NWK payloads",
				Buckets: prometheus.LinearBuckets(0, 16, 9),
			},
		),
	}
}

// reason maps a decode error to its label value.
func reason(err error) string {
	switch {
	case errors.Is(err, codec.ErrInsufficientBytes):
		return ReasonInsufficientBytes
	case errors.Is(err, codec.ErrCapacityExceeded):
		return ReasonCapacityExceeded
	default:
		return ReasonOther
	}
}
