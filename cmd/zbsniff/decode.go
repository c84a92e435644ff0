package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/backkem/zigbee/pkg/nwk"
	"github.com/backkem/zigbee/pkg/security"
	"github.com/backkem/zigbee/pkg/sniffer"
	"github.com/spf13/cobra"
)

func newDecodeCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode one NWK PDU",
		Long: `Decode one NWK PDU given as hex and print its fields.

Secured frames have their auxiliary header split off; a security level of 0
in the header is read as security.default_level from the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseHex(args[0])
			if err != nil {
				return err
			}
			f, err := nwk.Decode(data)
			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}

			var sec *security.SecuredPayload
			if f.FrameHeader().FrameControl.Security() {
				sec, err = sniffer.SplitSecured(f, security.SecurityLevel(a.cfg.Security.DefaultLevel))
				if err != nil {
					return fmt.Errorf("decode: security header: %w", err)
				}
			}

			sum := sniffer.Summarize(f, sec)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			printFrame(cmd.OutOrStdout(), f, sec, sum)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func printFrame(w io.Writer, f nwk.Frame, sec *security.SecuredPayload, sum *sniffer.Summary) {
	h := f.FrameHeader()
	row := func(k, format string, args ...any) {
		fmt.Fprintf(w, "  %-15s %s\n", k, fmt.Sprintf(format, args...))
	}

	fmt.Fprintf(w, "%s frame  seq=%d radius=%d\n", sum.FrameType, sum.Sequence, sum.Radius)
	row("frame control", "%s", h.FrameControl)
	row("transmission", "%s", sum.Transmission)
	row("destination", "%s", withIEEE(sum.Destination, sum.DestinationIEEE))
	row("source", "%s", withIEEE(sum.Source, sum.SourceIEEE))
	if h.MulticastControl != nil {
		m := *h.MulticastControl
		row("multicast", "%s non-member=%d max-member=%d", m.Mode(), m.NonMemberRadius(), m.MaxMemberRadius())
	}
	if h.SourceRoute != nil {
		row("relays", "%s (index %d)", strings.Join(sum.Relays, " "), h.SourceRoute.RelayIndex)
	}

	if sec != nil {
		s := sum.Security
		row("security", "%s key=%s counter=%d", s.Level, s.Key, s.FrameCounter)
		if s.Source != "" {
			row("sec source", "%s", s.Source)
		}
		row("body", "%d bytes %x", len(sec.Body), sec.Body)
		row("mic", "%x", sec.MIC)
		return
	}

	switch v := f.(type) {
	case *nwk.CommandFrame:
		row("command", "%s", sum.Command)
		if p, err := nwk.ParseCommand(v); err == nil {
			row("parameters", "%+v", p)
		} else if len(v.Payload) > 0 {
			row("payload", "%d bytes %x", len(v.Payload), v.Payload)
		}
	case *nwk.DataFrame:
		row("payload", "%d bytes %x", len(v.Payload), v.Payload)
	}
}

func withIEEE(short, ieee string) string {
	if ieee == "" {
		return short
	}
	return short + " (" + ieee + ")"
}
