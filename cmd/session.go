package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hifz/engine/internal/ukey"
)

var (
	sessionAxis  string
	sessionLimit int
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Generate, resume, or clear a study session",
}

var sessionGenerateCmd = &cobra.Command{
	Use:   "generate <user> <goal>",
	Short: "Build a fresh ordered session for a goal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		axis := ukey.AxisNone
		if sessionAxis != "" {
			a, ok := ukey.ParseAxis(sessionAxis)
			if !ok {
				return fmt.Errorf("unknown axis %q", sessionAxis)
			}
			axis = a
		}

		r, err := openRuntime()
		if err != nil {
			return err
		}
		defer r.close()

		ukeys, err := r.sched.GenerateSession(args[0], args[1], axis, sessionLimit)
		if err != nil {
			return err
		}
		for _, u := range ukeys {
			fmt.Println(u)
		}
		return nil
	},
}

var sessionResumeCmd = &cobra.Command{
	Use:   "resume <user>",
	Short: "Print the user's stored session in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRuntime()
		if err != nil {
			return err
		}
		defer r.close()

		ukeys, err := r.sched.ResumeSession(args[0])
		if err != nil {
			return err
		}
		for _, u := range ukeys {
			fmt.Println(u)
		}
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <user>",
	Short: "Discard the user's stored session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRuntime()
		if err != nil {
			return err
		}
		defer r.close()
		return r.sched.ClearSession(args[0])
	},
}

func init() {
	sessionGenerateCmd.Flags().StringVar(&sessionAxis, "axis", "", "Restrict to one learning axis (e.g. memorization)")
	sessionGenerateCmd.Flags().IntVar(&sessionLimit, "limit", 20, "Maximum session length")
	sessionCmd.AddCommand(sessionGenerateCmd, sessionResumeCmd, sessionClearCmd)
	rootCmd.AddCommand(sessionCmd)
}
