package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/syllabus"
)

var exportJSON bool

// exportDoc mirrors the persisted keys one to one.
type exportDoc struct {
	Department string                 `json:"department-name" yaml:"department-name"`
	Program    string                 `json:"program-name" yaml:"program-name"`
	Syllabus   []syllabus.Semester    `json:"syllabus-data" yaml:"syllabus-data"`
	Notes      []syllabus.Note        `json:"syllabus-notes" yaml:"syllabus-notes"`
	PDFs       []syllabus.PDFResource `json:"syllabus-pdfs" yaml:"syllabus-pdfs"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every stored key as YAML (or JSON)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		doc := exportDoc{
			Department: s.Settings().DepartmentName(),
			Program:    s.Settings().ProgramName(),
			Syllabus:   s.Syllabus().Semesters(),
			Notes:      s.Notes().All(),
			PDFs:       s.PDFs().All(),
		}

		if exportJSON {
			printJSON(doc)
			return
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			fatal("Error encoding YAML", err)
		}
		if err := enc.Close(); err != nil {
			fatal("Error encoding YAML", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "Output in JSON format")
}
