package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newBridgesCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "bridges",
		Short: "Browse bridges advertised over mDNS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resolver()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out := cmd.OutOrStdout()
			for _, b := range r.List(ctx) {
				addr, err := b.Addr()
				if err != nil {
					addr = "-"
				}
				fmt.Fprintf(out, "%-24s %-28s proto=%d", b.Instance, addr, b.TXT.ProtocolVersion)
				if b.TXT.Channel != 0 {
					fmt.Fprintf(out, " ch=%d", b.TXT.Channel)
				}
				if b.TXT.HasPANID {
					fmt.Fprintf(out, " pan=0x%04x", b.TXT.PANID)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 3*time.Second, "How long to browse")
	return cmd
}
