package discovery

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/backkem/zigbee/pkg/transport"
	"github.com/grandcat/zeroconf"
	"github.com/pion/logging"
)

const (
	// ServiceBridge is the DNS-SD service type of a NWK bridge.
	ServiceBridge = "_zbnwk._udp"

	// DefaultDomain is the mDNS domain.
	DefaultDomain = "local."
)

// MDNSServer is a registered mDNS service.
type MDNSServer interface {
	Shutdown()
}

// MDNSServerFactory creates MDNSServer instances.
type MDNSServerFactory interface {
	Register(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (MDNSServer, error)
}

// zeroconfServerFactory is the production implementation using grandcat/zeroconf.
type zeroconfServerFactory struct{}

func (z *zeroconfServerFactory) Register(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (MDNSServer, error) {
	return zeroconf.Register(instance, service, domain, port, txt, ifaces)
}

// AdvertiserConfig holds configuration for the Advertiser.
type AdvertiserConfig struct {
	// Instance is the DNS-SD instance name. If empty, a random name is
	// generated when advertising starts.
	Instance string

	// Port is the UDP port of the bridge (default: transport.DefaultPort).
	Port int

	// TXT is the advertised TXT record. A zero ProtocolVersion selects
	// DefaultBridgeTXT.
	TXT BridgeTXT

	// Interfaces specifies which network interfaces to advertise on.
	// If nil, all interfaces are used.
	Interfaces []net.Interface

	// ServerFactory creates mDNS servers. If nil, zeroconf is used.
	ServerFactory MDNSServerFactory

	// LoggerFactory creates the "discovery" logger. If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Advertiser publishes the bridge service.
type Advertiser struct {
	config   AdvertiserConfig
	factory  MDNSServerFactory
	log      logging.LeveledLogger
	mu       sync.Mutex
	server   MDNSServer
	instance string
	closed   bool
}

// NewAdvertiser creates an Advertiser. It validates the TXT record but
// does not register anything until Start.
func NewAdvertiser(config AdvertiserConfig) (*Advertiser, error) {
	if config.Port <= 0 || config.Port > 65535 {
		config.Port = transport.DefaultPort
	}
	if config.TXT.ProtocolVersion == 0 {
		txt := DefaultBridgeTXT()
		txt.Channel = config.TXT.Channel
		txt.PANID = config.TXT.PANID
		txt.HasPANID = config.TXT.HasPANID
		config.TXT = txt
	}
	if err := config.TXT.Validate(); err != nil {
		return nil, err
	}

	factory := config.ServerFactory
	if factory == nil {
		factory = &zeroconfServerFactory{}
	}

	a := &Advertiser{
		config:  config,
		factory: factory,
	}
	if config.LoggerFactory != nil {
		a.log = config.LoggerFactory.NewLogger("discovery")
	}
	return a, nil
}

// Start registers the service.
func (a *Advertiser) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.server != nil {
		return ErrAlreadyStarted
	}

	instance := a.config.Instance
	if instance == "" {
		name, err := generateRandomInstanceName()
		if err != nil {
			return fmt.Errorf("discovery: instance name: %w", err)
		}
		instance = name
	}

	txt := a.config.TXT.Encode()
	if a.log != nil {
		a.log.Debugf("registering %s.%s%s port=%d txt=%v",
			instance, ServiceBridge, DefaultDomain, a.config.Port, txt)
	}

	server, err := a.factory.Register(instance, ServiceBridge, DefaultDomain, a.config.Port, txt, a.config.Interfaces)
	if err != nil {
		return fmt.Errorf("discovery: register %s: %w", ServiceBridge, err)
	}
	if a.log != nil {
		a.log.Infof("advertising %q as %s", instance, ServiceBridge)
	}

	a.server = server
	a.instance = instance
	return nil
}

// Stop withdraws the service.
func (a *Advertiser) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.server == nil {
		return ErrNotStarted
	}
	a.server.Shutdown()
	a.server = nil
	a.instance = ""
	return nil
}

// Close withdraws the service and closes the advertiser.
func (a *Advertiser) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	a.closed = true
	return nil
}

// IsAdvertising reports whether the service is registered.
func (a *Advertiser) IsAdvertising() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.server != nil
}

// InstanceName returns the registered instance name, or "" when stopped.
func (a *Advertiser) InstanceName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.instance
}

// generateRandomInstanceName returns 16 uppercase hex characters.
func generateRandomInstanceName() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016X", binary.BigEndian.Uint64(buf[:])), nil
}
