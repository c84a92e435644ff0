package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/backkem/zigbee/pkg/capture"
	"github.com/backkem/zigbee/pkg/config"
	"github.com/backkem/zigbee/pkg/discovery"
	"github.com/spf13/cobra"
)

// app carries state shared by the subcommands.
type app struct {
	configPath string
	cfg        config.Config

	// mdns overrides the zeroconf resolver. Tests set it.
	mdns discovery.MDNSResolver
}

func newRootCmd() *cobra.Command {
	return newAppCmd(&app{})
}

func newAppCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "zbsniff",
		Short: "ZigBee NWK frame sniffer",
		Long: `zbsniff receives ZigBee network layer PDUs forwarded over UDP by a
radio bridge, decodes them, stores the raw bytes and publishes summaries.

Examples:
  zbsniff listen --listen :17754
  zbsniff decode 0800fcff00001e05deadbeef
  zbsniff captures --limit 20`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a TOML configuration file")

	root.AddCommand(
		newListenCmd(a),
		newDecodeCmd(a),
		newCapturesCmd(a),
		newSendCmd(a),
		newBridgesCmd(a),
	)
	return root
}

func (a *app) loadConfig() error {
	if a.configPath == "" {
		a.cfg = config.Default()
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) resolver() (*discovery.Resolver, error) {
	return discovery.NewResolver(discovery.ResolverConfig{
		MDNSResolver:  a.mdns,
		LoggerFactory: a.cfg.LoggerFactory(),
	})
}

// openStorage opens the configured capture store. An empty path keeps
// captures in memory.
func openStorage(cfg config.Config) (capture.Storage, error) {
	if cfg.Capture.Path == "" {
		return capture.NewMemoryStorage(cfg.Capture.MaxRecords), nil
	}
	return capture.OpenPebble(cfg.Capture.Path, cfg.Capture.MaxRecords)
}

// parseHex accepts hex with optional 0x prefix and space, colon or dash
// separators.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	s = strings.NewReplacer(" ", "", ":", "", "-", "", "\t", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("invalid hex: empty input")
	}
	return b, nil
}
