package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var orphansCmd = &cobra.Command{
	Use:   "orphans <user>",
	Short: "List user progress rows that no longer resolve in the content graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRuntime()
		if err != nil {
			return err
		}
		defer r.close()

		orphans, err := r.engine.ListOrphans(args[0])
		if err != nil {
			return err
		}
		if len(orphans) == 0 {
			fmt.Println("no orphans")
			return nil
		}
		for _, u := range orphans {
			fmt.Println(u)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orphansCmd)
}
