package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/syllabus"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of syllabus",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("syllabus version %s\n", syllabus.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
