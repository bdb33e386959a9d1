package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/syllabus"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the data directory with its git remote",
	Long: `Synchronize a versioned data directory with the configured remote.
It integrates remote changes and pushes local ones.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		uri := dataDir
		if uri == "" {
			uri = defaultDataDir()
		}

		fmt.Println("Syncing...")
		if err := syllabus.Sync(cmd.Context(), uri,
			syllabus.WithVersioning(true),
			syllabus.WithLogger(slog.Default()),
		); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Sync failed: %v\n", err)
			fmt.Println("Tip: Ensure you have a remote configured ('git remote add origin <url>') and you are online.")
			fmt.Println("If there are merge conflicts, you may need to resolve them manually in the repository.")
			os.Exit(1)
		}

		fmt.Println("Sync completed successfully.")
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
