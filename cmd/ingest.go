package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hifz/engine/internal/content"
	"hifz/engine/internal/errs"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <candidate.db>",
	Short: "Validate a new content version and swap it in",
	Long: `Checks that the candidate content database keeps every ukey of the live
version (the stability invariant), then atomically replaces the live file
and rebuilds the identity registry. A candidate that would drop a live ukey
is rejected and nothing changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRuntime()
		if err != nil {
			return err
		}
		defer r.close()

		next, err := content.Swap(r.content, r.registry, args[0])
		if err != nil {
			if errors.Is(err, errs.ErrContentStability) {
				return fmt.Errorf("rejected: %w", err)
			}
			return err
		}
		r.content = next

		version, err := next.Version()
		if err != nil {
			return err
		}
		fmt.Printf("content swapped to version %s (%d nodes)\n", version, r.registry.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
