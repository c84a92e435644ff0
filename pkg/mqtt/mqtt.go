// Package mqtt publishes JSON frame summaries to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/pion/logging"
)

var (
	// ErrNoBroker is returned when Dial is called without a broker URL.
	ErrNoBroker = errors.New("mqtt: no broker configured")

	// ErrTimeout is returned when the broker does not acknowledge in time.
	ErrTimeout = errors.New("mqtt: timeout")

	// ErrClosed is returned when publishing on a closed publisher.
	ErrClosed = errors.New("mqtt: publisher closed")
)

// Config configures a Publisher.
type Config struct {
	// Broker is the broker URL, e.g. "tcp://localhost:1883". Required.
	Broker   string
	ClientID string
	// TopicPrefix is prepended to every topic with a "/" separator.
	TopicPrefix string
	QoS         byte

	// ConnectTimeout bounds the initial connection. Default: 10s.
	ConnectTimeout time.Duration
	// PublishTimeout bounds each publish acknowledgement. Default: 2s.
	PublishTimeout time.Duration

	// LoggerFactory creates the "mqtt" logger. If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// client is the subset of paho.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Publisher marshals values to JSON and publishes them under a topic prefix.
type Publisher struct {
	conn           client
	prefix         string
	qos            byte
	publishTimeout time.Duration
	log            logging.LeveledLogger

	mu     sync.Mutex
	closed bool
}

// Dial connects to the broker. The paho client reconnects on its own after
// the initial connection succeeds.
func Dial(config Config) (*Publisher, error) {
	if config.Broker == "" {
		return nil, ErrNoBroker
	}
	connectTimeout := config.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = 10 * time.Second
	}

	opts := paho.NewClientOptions().AddBroker(config.Broker)
	opts.ClientID = config.ClientID
	opts.AutoReconnect = true
	opts.ConnectTimeout = connectTimeout

	conn := paho.NewClient(opts)
	token := conn.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: connect to %s", ErrTimeout, config.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect to %s: %w", config.Broker, err)
	}

	p := newPublisher(conn, config)
	if p.log != nil {
		p.log.Infof("connected to %s as %q", config.Broker, config.ClientID)
	}
	return p, nil
}

func newPublisher(conn client, config Config) *Publisher {
	p := &Publisher{
		conn:           conn,
		prefix:         strings.Trim(config.TopicPrefix, "/"),
		qos:            config.QoS,
		publishTimeout: config.PublishTimeout,
	}
	if p.publishTimeout == 0 {
		p.publishTimeout = 2 * time.Second
	}
	if config.LoggerFactory != nil {
		p.log = config.LoggerFactory.NewLogger("mqtt")
	}
	return p
}

// Topic returns the full topic for a sub-topic.
func (p *Publisher) Topic(sub string) string {
	sub = strings.Trim(sub, "/")
	if p.prefix == "" {
		return sub
	}
	return p.prefix + "/" + sub
}

// Publish marshals v to JSON and publishes it on Topic(sub).
func (p *Publisher) Publish(sub string, v any) error {
	if p.isClosed() {
		return ErrClosed
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mqtt: marshal: %w", err)
	}

	topic := p.Topic(sub)
	token := p.conn.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(p.publishTimeout) {
		if p.log != nil {
			p.log.Warnf("publish to %s timed out", topic)
		}
		return fmt.Errorf("%w: publish to %s", ErrTimeout, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publish to %s: %w", topic, err)
	}
	if p.log != nil {
		p.log.Tracef("published %d bytes to %s", len(payload), topic)
	}
	return nil
}

func (p *Publisher) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	p.conn.Disconnect(250)
	return nil
}
