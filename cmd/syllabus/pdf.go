package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/syllabus"
	"github.com/aretw0/syllabus/internal/validate"
)

var (
	pdfSemester int
	pdfSubject  string
	pdfTitle    string
	pdfURL      string
	pdfJSON     bool
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Manage PDF links attached to subjects",
}

var pdfAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a PDF link",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		draft := syllabus.PDFDraft{
			Title:       pdfTitle,
			URL:         pdfURL,
			SubjectCode: pdfSubject,
			SemesterID:  pdfSemester,
		}
		if err := validate.Struct(draft); err != nil {
			fatal("Invalid PDF", err)
		}

		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		pdf := s.PDFs().Add(ctx, draft)
		fmt.Printf("PDF '%s' saved (%s).\n", pdf.Title, pdf.ID)
	},
}

var pdfListCmd = &cobra.Command{
	Use:   "list",
	Short: "List PDF links, optionally for one subject",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		pdfs := s.PDFs().All()
		if pdfSubject != "" {
			pdfs = s.PDFs().QueryByOwner(pdfSubject, pdfSemester)
		}

		if pdfJSON {
			printJSON(pdfs)
			return
		}
		for _, p := range pdfs {
			fmt.Printf("%s  [%s/%d] %s <%s>\n", p.ID, p.SubjectCode, p.SemesterID, p.Title, p.URL)
		}
	},
}

var pdfUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change a PDF link's fields",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		var patch syllabus.PDFPatch
		if flags.Changed("title") {
			patch.Title = &pdfTitle
		}
		if flags.Changed("url") {
			patch.URL = &pdfURL
		}
		if flags.Changed("subject") {
			patch.SubjectCode = &pdfSubject
		}
		if flags.Changed("semester") {
			patch.SemesterID = &pdfSemester
		}
		if err := validate.Struct(patch); err != nil {
			fatal("Invalid PDF", err)
		}

		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		if !s.PDFs().Update(ctx, args[0], patch) {
			notFound("pdf %s", args[0])
		}
		fmt.Printf("PDF %s updated.\n", args[0])
	},
}

var pdfDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a PDF link",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		if !s.PDFs().Delete(ctx, args[0]) {
			notFound("pdf %s", args[0])
		}
		fmt.Printf("PDF %s deleted.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(pdfCmd)
	pdfCmd.AddCommand(pdfAddCmd, pdfListCmd, pdfUpdateCmd, pdfDeleteCmd)

	for _, c := range []*cobra.Command{pdfAddCmd, pdfListCmd, pdfUpdateCmd} {
		c.Flags().IntVarP(&pdfSemester, "semester", "S", 1, "Semester ID")
		c.Flags().StringVarP(&pdfSubject, "subject", "c", "", "Subject code")
	}
	for _, c := range []*cobra.Command{pdfAddCmd, pdfUpdateCmd} {
		c.Flags().StringVar(&pdfTitle, "title", "", "Document title")
		c.Flags().StringVar(&pdfURL, "url", "", "Absolute URL of the PDF")
	}
	pdfAddCmd.MarkFlagRequired("title")
	pdfAddCmd.MarkFlagRequired("url")
	pdfAddCmd.MarkFlagRequired("subject")

	pdfListCmd.Flags().BoolVar(&pdfJSON, "json", false, "Output in JSON format")
}
