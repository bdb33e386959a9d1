package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/syllabus"
)

var (
	unitSemester int
	unitSubject  string
	unitTitle    string
	unitLines    []string
)

var unitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Add, edit and delete the units of a subject",
	Long: `Units are addressed by position (0-based) or by their ID.
Positions shift after a delete; IDs do not.`,
}

var unitAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a unit to a subject",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		unit, ok := s.Syllabus().AddUnit(ctx, unitSemester, unitSubject, syllabus.Unit{Title: unitTitle, Content: unitLines})
		if !ok {
			notFound("subject %s in semester %d", unitSubject, unitSemester)
		}
		fmt.Printf("Unit '%s' added (%s).\n", unit.Title, unit.ID)
	},
}

var unitUpdateCmd = &cobra.Command{
	Use:   "update [index|id]",
	Short: "Replace a unit's title and content",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		unit := syllabus.Unit{Title: unitTitle, Content: unitLines}
		var ok bool
		if idx, err := strconv.Atoi(args[0]); err == nil {
			ok = s.Syllabus().UpdateUnit(ctx, unitSemester, unitSubject, idx, unit)
		} else {
			ok = s.Syllabus().UpdateUnitByID(ctx, unitSemester, unitSubject, args[0], unit)
		}
		if !ok {
			notFound("unit %s of %s", args[0], unitSubject)
		}
		fmt.Printf("Unit %s updated.\n", args[0])
	},
}

var unitDeleteCmd = &cobra.Command{
	Use:   "delete [index|id]",
	Short: "Delete a unit",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		var ok bool
		if idx, err := strconv.Atoi(args[0]); err == nil {
			ok = s.Syllabus().DeleteUnit(ctx, unitSemester, unitSubject, idx)
		} else {
			ok = s.Syllabus().DeleteUnitByID(ctx, unitSemester, unitSubject, args[0])
		}
		if !ok {
			notFound("unit %s of %s", args[0], unitSubject)
		}
		fmt.Printf("Unit %s deleted.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(unitCmd)
	unitCmd.AddCommand(unitAddCmd, unitUpdateCmd, unitDeleteCmd)

	pf := unitCmd.PersistentFlags()
	pf.IntVarP(&unitSemester, "semester", "S", 1, "Semester ID")
	pf.StringVarP(&unitSubject, "subject", "c", "", "Subject code")
	unitCmd.MarkPersistentFlagRequired("subject")

	for _, c := range []*cobra.Command{unitAddCmd, unitUpdateCmd} {
		c.Flags().StringVar(&unitTitle, "title", "", "Unit title")
		c.Flags().StringArrayVar(&unitLines, "line", nil, "Content line (repeatable)")
		c.MarkFlagRequired("title")
	}
}
