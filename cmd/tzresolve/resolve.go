package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var (
		epoch int64
		at    string
		fold  int
	)

	cmd := &cobra.Command{
		Use:   "resolve [zone]",
		Short: "Resolve the transition active at an instant or a civil time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			log := invocationLogger("resolve")

			reg, err := loadRegistry(cfg.DataDir)
			if err != nil {
				return err
			}
			zoneName := cfg.DefaultZone
			if len(args) == 1 {
				zoneName = args[0]
			}
			h, err := reg.Get(zoneName)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("epoch") == cmd.Flags().Changed("at") {
				return fmt.Errorf("specify exactly one of --epoch or --at")
			}

			var (
				totalOffset, dstOffset int64
				abbr                   string
			)
			if cmd.Flags().Changed("epoch") {
				t, err := reg.InfoForEpoch(h, epoch)
				if err != nil {
					return err
				}
				totalOffset, dstOffset, abbr = t.TotalOffset, t.DSTOffset, t.Abbreviation
			} else {
				civil, err := time.Parse("2006-01-02T15:04:05", at)
				if err != nil {
					return fmt.Errorf("parsing --at %q (want 2006-01-02T15:04:05): %w", at, err)
				}
				t, err := reg.InfoForLocal(h, int64(civil.Year()), int(civil.Month()), civil.Day(),
					civil.Hour(), civil.Minute(), civil.Second(), fold)
				if err != nil {
					return err
				}
				totalOffset, dstOffset, abbr = t.TotalOffset, t.DSTOffset, t.Abbreviation
			}

			log.WithField("zone", h.Name()).Debug("resolved")
			fmt.Fprintf(cmd.OutOrStdout(), "%s total_offset=%ds dst_offset=%ds abbreviation=%s\n",
				h.Name(), totalOffset, dstOffset, abbr)
			return nil
		},
	}

	cmd.Flags().Int64Var(&epoch, "epoch", 0, "UT instant, seconds since the Unix epoch")
	cmd.Flags().StringVar(&at, "at", "", "civil time, 2006-01-02T15:04:05, interpreted in the resolved zone")
	cmd.Flags().IntVar(&fold, "fold", 0, "0 or 1, disambiguates --at during a fall-back overlap (ignored for --epoch)")

	return cmd
}
