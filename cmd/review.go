package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hifz/engine/internal/errs"
	"hifz/engine/internal/fsrs"
)

var reviewCmd = &cobra.Command{
	Use:   "review <user> <ukey> <rating>",
	Short: "Record a review outcome (rating: Again, Hard, Good, Easy)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, rawUkey := args[0], args[1]

		var rating fsrs.Rating
		if err := rating.UnmarshalText([]byte(args[2])); err != nil {
			return err
		}

		r, err := openRuntime()
		if err != nil {
			return err
		}
		defer r.close()

		if err := r.engine.RecordReview(userID, rawUkey, rating); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return fmt.Errorf("%s is no longer available for review", rawUkey)
			}
			if errors.Is(err, errs.ErrTransientStorage) {
				return fmt.Errorf("store busy, retry: %w", err)
			}
			return err
		}

		fmt.Printf("recorded %s for %s\n", rating, rawUkey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
