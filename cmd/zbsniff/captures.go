package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/backkem/zigbee/pkg/capture"
	"github.com/backkem/zigbee/pkg/nwk"
	"github.com/backkem/zigbee/pkg/sniffer"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

var errNoCapturePath = errors.New("captures: capture.path is not set in the configuration")

func newCapturesCmd(a *app) *cobra.Command {
	var (
		limit int
		id    string
	)

	cmd := &cobra.Command{
		Use:   "captures",
		Short: "List stored PDUs",
		Long: `List PDUs stored by "zbsniff listen", newest first.

With --id, print one capture decoded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Capture.Path == "" {
				return errNoCapturePath
			}
			store, err := openStorage(a.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if id != "" {
				return showCapture(out, store, id)
			}

			entries, err := store.List(limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				printCaptureLine(out, e)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of captures to list (0 for all)")
	cmd.Flags().StringVar(&id, "id", "", "Show a single capture by ID")
	return cmd
}

func printCaptureLine(w io.Writer, e capture.Entry) {
	kind := "malformed"
	if f, err := nwk.Decode(e.Record.Data); err == nil {
		kind = f.FrameType().String()
	}
	fmt.Fprintf(w, "%s  %s  %-20s %-9s %4d  %x\n",
		e.ID, e.Record.ReceivedAt.Format(time.RFC3339Nano), e.Record.Peer, kind, len(e.Record.Data), e.Record.Data)
}

func showCapture(w io.Writer, store capture.Storage, id string) error {
	kid, err := ksuid.Parse(id)
	if err != nil {
		return fmt.Errorf("captures: invalid id %q: %w", id, err)
	}
	rec, err := store.Get(kid)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "id        %s\nreceived  %s\npeer      %s\nbytes     %x\n",
		kid, rec.ReceivedAt.Format(time.RFC3339Nano), rec.Peer, rec.Data)

	f, err := nwk.Decode(rec.Data)
	if err != nil {
		fmt.Fprintf(w, "decode    %v\n", err)
		return nil
	}
	printFrame(w, f, nil, sniffer.Summarize(f, nil))
	return nil
}
