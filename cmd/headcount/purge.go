package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errPurgeNotConfirmed = errors.New("refusing to purge without --confirm")

func newPurgeCommand(flags *rootFlags) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every detection and rollup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errPurgeNotConfirmed
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			st, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer st.close()

			removed, err := st.rollups.Purge(cmd.Context())
			if err != nil {
				slog.Error("Purge failed", "error", err)
				return err
			}

			slog.Info("Purge complete",
				"raw_events", removed.RawEvents,
				"daily_rollups", removed.DailyRollups,
				"monthly_rollups", removed.MonthlyRollups,
			)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted %s detection records\n", humanize.Comma(removed.RawEvents))
			fmt.Fprintf(out, "Deleted %s daily rollups\n", humanize.Comma(removed.DailyRollups))
			fmt.Fprintf(out, "Deleted %s monthly rollups\n", humanize.Comma(removed.MonthlyRollups))
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm deletion of all data")
	return cmd
}
