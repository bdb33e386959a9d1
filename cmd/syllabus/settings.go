package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change the department and program names",
}

var settingsGetCmd = &cobra.Command{
	Use:       "get [department|program]",
	Short:     "Print a setting, or both when no name is given",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"department", "program"},
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		settings := s.Settings()
		if len(args) == 0 {
			fmt.Printf("department: %s\nprogram: %s\n", settings.DepartmentName(), settings.ProgramName())
			return
		}
		switch args[0] {
		case "department":
			fmt.Println(settings.DepartmentName())
		case "program":
			fmt.Println(settings.ProgramName())
		default:
			fmt.Fprintf(os.Stderr, "unknown setting: %s\n", args[0])
			os.Exit(1)
		}
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [department|program] [value]",
	Short: "Change a setting; an empty value restores the default",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		settings := s.Settings()
		switch args[0] {
		case "department":
			settings.SetDepartmentName(ctx, args[1])
			fmt.Printf("department: %s\n", settings.DepartmentName())
		case "program":
			settings.SetProgramName(ctx, args[1])
			fmt.Printf("program: %s\n", settings.ProgramName())
		default:
			fmt.Fprintf(os.Stderr, "unknown setting: %s\n", args[0])
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
}
