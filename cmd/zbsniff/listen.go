package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/backkem/zigbee/pkg/config"
	"github.com/backkem/zigbee/pkg/discovery"
	"github.com/backkem/zigbee/pkg/mqtt"
	"github.com/backkem/zigbee/pkg/security"
	"github.com/backkem/zigbee/pkg/sniffer"
	"github.com/backkem/zigbee/pkg/transport"
	"github.com/pion/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newListenCmd(a *app) *cobra.Command {
	var (
		listen      string
		logLevel    string
		printFrames bool
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive NWK frames until interrupted",
		Long: `Receive NWK PDUs on a UDP socket until SIGINT or SIGTERM.

Every decoded frame is stored (capture.path, in memory when empty),
published to MQTT when mqtt.broker is set and counted in Prometheus
metrics served on metrics.listen. With mdns.enabled the listener is
advertised as _zbnwk._udp.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				a.cfg.Listen = listen
			}
			if cmd.Flags().Changed("log-level") {
				a.cfg.LogLevel = logLevel
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := listenOptions{}
			if printFrames {
				opts.Out = cmd.OutOrStdout()
			}
			return runListen(ctx, a.cfg, opts)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "UDP listen address (overrides listen)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (overrides log_level)")
	cmd.Flags().BoolVarP(&printFrames, "print", "p", false, "Print one line per decoded frame")
	return cmd
}

type listenOptions struct {
	// Conn replaces the UDP socket, e.g. with a transport.Pipe endpoint.
	Conn net.PacketConn

	// Out receives one line per decoded frame when set.
	Out io.Writer

	// Ready is called with the listen address once frames are accepted.
	Ready func(net.Addr)

	// Registry replaces the metrics registry.
	Registry *prometheus.Registry
}

// runListen wires the receive path and blocks until ctx is done.
func runListen(ctx context.Context, cfg config.Config, opts listenOptions) error {
	lf := cfg.LoggerFactory()
	log := lf.NewLogger("zbsniff")

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var pub sniffer.Publisher
	if cfg.MQTT.Broker != "" {
		p, err := mqtt.Dial(mqtt.Config{
			Broker:        cfg.MQTT.Broker,
			ClientID:      cfg.MQTT.ClientID,
			TopicPrefix:   cfg.MQTT.TopicPrefix,
			QoS:           cfg.MQTT.QoS,
			LoggerFactory: lf,
		})
		if err != nil {
			return err
		}
		defer p.Close()
		pub = p
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	sn := sniffer.New(sniffer.Config{
		Storage:       store,
		Publisher:     pub,
		Registerer:    reg,
		FallbackLevel: security.SecurityLevel(cfg.Security.DefaultLevel),
		LoggerFactory: lf,
	})
	if opts.Out != nil {
		out := opts.Out
		sn.OnFrame(func(f *sniffer.Frame) { printSummaryLine(out, f.Summary) })
	}

	udp, err := transport.NewUDP(transport.UDPConfig{
		Conn:          opts.Conn,
		ListenAddr:    cfg.Listen,
		Handler:       sn.HandleMessage,
		LoggerFactory: lf,
	})
	if err != nil {
		return err
	}

	if cfg.Metrics.Listen != "" {
		srv, _, err := serveMetrics(cfg.Metrics.Listen, reg, log)
		if err != nil {
			_ = udp.Stop()
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.MDNS.Enabled {
		adv, err := advertise(cfg, udp.LocalAddr(), lf)
		if err != nil {
			_ = udp.Stop()
			return err
		}
		defer adv.Close()
	}

	if err := udp.Start(); err != nil {
		return err
	}
	if opts.Ready != nil {
		opts.Ready(udp.LocalAddr())
	}

	<-ctx.Done()
	log.Infof("shutting down")
	if err := udp.Stop(); err != nil && !errors.Is(err, transport.ErrClosed) {
		return err
	}
	return nil
}

// serveMetrics serves reg on /metrics and returns the bound address.
func serveMetrics(addr string, reg *prometheus.Registry, log logging.LeveledLogger) (*http.Server, net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()
	log.Infof("serving metrics on http://%s/metrics", ln.Addr())
	return srv, ln.Addr(), nil
}

func advertise(cfg config.Config, local net.Addr, lf logging.LoggerFactory) (*discovery.Advertiser, error) {
	port := 0
	if udpAddr, ok := local.(*net.UDPAddr); ok {
		port = udpAddr.Port
	}
	adv, err := discovery.NewAdvertiser(discovery.AdvertiserConfig{
		Instance:      cfg.MDNS.Instance,
		Port:          port,
		LoggerFactory: lf,
	})
	if err != nil {
		return nil, err
	}
	if err := adv.Start(); err != nil {
		return nil, err
	}
	return adv, nil
}

func printSummaryLine(w io.Writer, s *sniffer.Summary) {
	detail := s.Transmission
	switch {
	case s.Security != nil:
		detail = s.Security.Level
	case s.Command != "":
		detail = s.Command
	}
	fmt.Fprintf(w, "%s %-8s %s -> %s seq=%-3d radius=%-2d len=%-3d %s\n",
		s.ReceivedAt.Format("15:04:05.000"), s.FrameType, s.Source, s.Destination,
		s.Sequence, s.Radius, s.PayloadLength, detail)
}
