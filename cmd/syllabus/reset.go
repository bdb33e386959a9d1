package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the built-in syllabus",
	Long: `Replace the stored syllabus with the built-in default.
Notes, PDF links and settings are kept.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !resetYes {
			fmt.Fprintln(os.Stderr, "This discards every syllabus edit. Re-run with --yes to confirm.")
			os.Exit(1)
		}

		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		s.Syllabus().Reset(ctx)
		fmt.Printf("Syllabus reset (%d semesters).\n", len(s.Syllabus().Semesters()))
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Confirm the reset")
}
