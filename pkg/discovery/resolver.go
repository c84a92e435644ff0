package discovery

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/pion/logging"
)

// DefaultBrowseTimeout is the default timeout for browse operations.
const DefaultBrowseTimeout = 5 * time.Second

// DefaultLookupTimeout is the default timeout for lookup operations.
const DefaultLookupTimeout = 3 * time.Second

// Bridge is a discovered bridge.
type Bridge struct {
	Instance string
	HostName string
	Port     int

	// IPs contains the resolved addresses, sorted by preference.
	IPs []net.IP

	TXT BridgeTXT
}

// Addr returns "host:port" for the preferred address.
func (b *Bridge) Addr() (string, error) {
	if len(b.IPs) == 0 {
		return "", ErrNoAddresses
	}
	return net.JoinHostPort(b.IPs[0].String(), strconv.Itoa(b.Port)), nil
}

// MDNSResolver is the interface for mDNS service resolution.
//
// Browse and Lookup return once the query is started; the implementation
// closes entries when ctx is done or the query fails.
type MDNSResolver interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
	Lookup(ctx context.Context, instance, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// zeroconfResolver is the production implementation using grandcat/zeroconf.
type zeroconfResolver struct {
	resolver *zeroconf.Resolver
}

func newZeroconfResolver() (*zeroconfResolver, error) {
	r, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, err
	}
	return &zeroconfResolver{resolver: r}, nil
}

func (z *zeroconfResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	return z.resolver.Browse(ctx, service, domain, entries)
}

func (z *zeroconfResolver) Lookup(ctx context.Context, instance, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	return z.resolver.Lookup(ctx, instance, service, domain, entries)
}

// ResolverConfig holds configuration for the Resolver.
type ResolverConfig struct {
	// MDNSResolver is the underlying resolver. If nil, zeroconf is used.
	MDNSResolver MDNSResolver

	// BrowseTimeout applies when the browse context has no deadline.
	BrowseTimeout time.Duration

	// LookupTimeout applies when the lookup context has no deadline.
	LookupTimeout time.Duration

	// LoggerFactory creates the "discovery" logger. If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Resolver discovers bridges.
type Resolver struct {
	config   ResolverConfig
	resolver MDNSResolver
	log      logging.LeveledLogger
}

// NewResolver creates a Resolver.
func NewResolver(config ResolverConfig) (*Resolver, error) {
	resolver := config.MDNSResolver
	if resolver == nil {
		zr, err := newZeroconfResolver()
		if err != nil {
			return nil, err
		}
		resolver = zr
	}
	if config.BrowseTimeout == 0 {
		config.BrowseTimeout = DefaultBrowseTimeout
	}
	if config.LookupTimeout == 0 {
		config.LookupTimeout = DefaultLookupTimeout
	}

	r := &Resolver{config: config, resolver: resolver}
	if config.LoggerFactory != nil {
		r.log = config.LoggerFactory.NewLogger("discovery")
	}
	return r, nil
}

// Browse streams discovered bridges until ctx is done or the browse
// timeout expires. Entries with an invalid TXT record are skipped.
func (r *Resolver) Browse(ctx context.Context) <-chan Bridge {
	results := make(chan Bridge)
	entries := make(chan *zeroconf.ServiceEntry)

	var cancel context.CancelFunc = func() {}
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel = context.WithTimeout(ctx, r.config.BrowseTimeout)
	}

	go func() {
		if err := r.resolver.Browse(ctx, ServiceBridge, DefaultDomain, entries); err != nil && r.log != nil {
			r.log.Warnf("browse: %v", err)
		}
	}()

	go func() {
		defer cancel()
		defer close(results)
		for entry := range entries {
			b, err := entryToBridge(entry)
			if err != nil {
				if r.log != nil {
					r.log.Debugf("skip %q: %v", entry.Instance, err)
				}
				continue
			}
			select {
			case results <- b:
			case <-ctx.Done():
				return
			}
		}
	}()

	return results
}

// List collects every bridge found before ctx is done or the browse
// timeout expires.
func (r *Resolver) List(ctx context.Context) []Bridge {
	var bridges []Bridge
	for b := range r.Browse(ctx) {
		bridges = append(bridges, b)
	}
	return bridges
}

// Lookup resolves one bridge by instance name.
func (r *Resolver) Lookup(ctx context.Context, instance string) (*Bridge, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.LookupTimeout)
		defer cancel()
	}

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		_ = r.resolver.Lookup(ctx, instance, ServiceBridge, DefaultDomain, entries)
	}()

	select {
	case entry, ok := <-entries:
		if !ok || entry == nil {
			return nil, ErrServiceNotFound
		}
		b, err := entryToBridge(entry)
		if err != nil {
			return nil, err
		}
		return &b, nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}

// entryToBridge converts a zeroconf entry.
func entryToBridge(entry *zeroconf.ServiceEntry) (Bridge, error) {
	txt, err := ParseBridgeTXT(entry.Text)
	if err != nil {
		return Bridge{}, err
	}

	ips := make([]net.IP, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	ips = append(ips, entry.AddrIPv4...)
	ips = append(ips, entry.AddrIPv6...)

	return Bridge{
		Instance: entry.Instance,
		HostName: entry.HostName,
		Port:     entry.Port,
		IPs:      SortIPsByPreference(ips),
		TXT:      txt,
	}, nil
}
