package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <user>",
	Short: "Show per-user scheduling aggregates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRuntime()
		if err != nil {
			return err
		}
		defer r.close()

		now := time.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		st, err := r.users.Stats(args[0], now.UnixMilli(), dayStart.UnixMilli())
		if err != nil {
			return err
		}

		fmt.Printf("tracked nodes:  %d\n", st.TrackedNodes)
		fmt.Printf("due now:        %d\n", st.DueNow)
		fmt.Printf("reviewed today: %d\n", st.ReviewedSince)
		fmt.Printf("mean energy:    %.3f\n", st.MeanEnergy)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
