package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the session and storage state as JSON",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		printJSON(map[string]any{
			"component": s.ComponentType(),
			"state":     s.State(),
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
