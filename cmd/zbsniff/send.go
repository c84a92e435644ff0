package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/backkem/zigbee/pkg/nwk"
	"github.com/backkem/zigbee/pkg/transport"
	"github.com/spf13/cobra"
)

// mdnsPrefix selects a bridge by its advertised instance name.
const mdnsPrefix = "mdns:"

func newSendCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "send <addr> <hex>",
		Short: "Inject one PDU into a bridge",
		Long: `Send one NWK PDU to a bridge over UDP.

addr is host:port, or mdns:<instance> to resolve an advertised bridge.
The PDU must decode unless --raw is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseHex(args[1])
			if err != nil {
				return err
			}
			if !raw {
				if _, err := nwk.Decode(data); err != nil {
					return fmt.Errorf("send: not a valid NWK frame (use --raw to send anyway): %w", err)
				}
			}

			addr, err := a.resolveBridge(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			peer, err := transport.ResolvePeer(addr)
			if err != nil {
				return fmt.Errorf("send: %w", err)
			}

			u, err := transport.NewUDP(transport.UDPConfig{
				ListenAddr:    ":0",
				Handler:       func(*transport.Datagram) {},
				LoggerFactory: a.cfg.LoggerFactory(),
			})
			if err != nil {
				return err
			}
			defer u.Stop()

			if err := u.Send(data, peer); err != nil {
				return fmt.Errorf("send: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d bytes to %s\n", len(data), peer)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Send bytes that do not decode as a NWK frame")
	return cmd
}

func (a *app) resolveBridge(ctx context.Context, addr string) (string, error) {
	if !strings.HasPrefix(addr, mdnsPrefix) {
		return addr, nil
	}
	r, err := a.resolver()
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := r.Lookup(ctx, strings.TrimPrefix(addr, mdnsPrefix))
	if err != nil {
		return "", fmt.Errorf("send: %s: %w", addr, err)
	}
	return b.Addr()
}
