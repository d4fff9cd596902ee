package cli

import (
	"fmt"

	"github.com/lazypower/cony/internal/engine"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one inactivity sweep now",
	Long:  "Mark patients without activity for tracker.inactive_after_days as inactive and purge dead sessions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		eng := engine.New(a.db, a.log, a.cfg.Tracker.InactiveAfterDays, a.cfg.Tracker.SweepInterval)
		res, err := eng.Sweep()
		if err != nil {
			return err
		}
		fmt.Printf("marked %d patients inactive, purged %d sessions\n", res.MarkedInactive, res.SessionsPurged)
		return nil
	},
}
