package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/syllabus"
)

var (
	semesterJSON    bool
	semesterID      int
	semesterName    string
	semesterCredits string
)

var semesterCmd = &cobra.Command{
	Use:     "semester",
	Aliases: []string{"sem"},
	Short:   "List and add semesters",
}

var semesterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List semesters with their subjects",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		semesters := s.Syllabus().Semesters()
		if semesterJSON {
			printJSON(semesters)
			return
		}

		notes := s.Notes().CountByOwner()
		pdfs := s.PDFs().CountByOwner()
		for _, sem := range semesters {
			fmt.Printf("%d  %s (%s credits)\n", sem.ID, sem.Name, sem.TotalCredits)
			for _, sub := range sem.Subjects {
				owner := syllabus.Owner{SubjectCode: sub.Code, SemesterID: sem.ID}
				fmt.Printf("    %-10s %s  [%d units, %d notes, %d pdfs]\n",
					sub.Code, sub.Name, len(sub.Units), notes[owner], pdfs[owner])
			}
		}
	},
}

var semesterAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an empty semester",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		id := semesterID
		if id == 0 {
			id = s.Syllabus().NextSemesterID()
		}
		name := semesterName
		if name == "" {
			name = fmt.Sprintf("Semester %d", id)
		}

		sem := s.Syllabus().AddSemester(ctx, syllabus.Semester{ID: id, Name: name, TotalCredits: semesterCredits})
		fmt.Printf("Semester %d '%s' added.\n", sem.ID, sem.Name)
	},
}

func init() {
	rootCmd.AddCommand(semesterCmd)
	semesterCmd.AddCommand(semesterListCmd, semesterAddCmd)

	semesterListCmd.Flags().BoolVar(&semesterJSON, "json", false, "Output in JSON format")
	semesterAddCmd.Flags().IntVar(&semesterID, "id", 0, "Semester ID (default: next free)")
	semesterAddCmd.Flags().StringVar(&semesterName, "name", "", "Semester name")
	semesterAddCmd.Flags().StringVar(&semesterCredits, "credits", "0", "Total credits label")
}
