package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/syllabus"
	"github.com/aretw0/syllabus/pkg/render"
)

var (
	subjectSemester int
	subjectFormat   string
	subjectWidth    int
	subjectStyle    string

	subjectName         string
	subjectCredits      string
	subjectObjective    string
	subjectTopics       []string
	subjectPracticals   []string
	subjectActivities   []string
	subjectDeliverables []string
)

var subjectCmd = &cobra.Command{
	Use:     "subject",
	Aliases: []string{"sub"},
	Short:   "Show and edit subjects",
}

var subjectShowCmd = &cobra.Command{
	Use:   "show [code]",
	Short: "Show a subject",
	Long: `Show a subject with its units, notes and PDF links.
Formats: term (rendered markdown, default), md, html, toc, json.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		sub, ok := s.Syllabus().Subject(subjectSemester, args[0])
		if !ok {
			notFound("subject %s in semester %d", args[0], subjectSemester)
		}

		md := render.SubjectMarkdown(sub)
		switch subjectFormat {
		case "json":
			printJSON(struct {
				syllabus.Subject
				Notes []syllabus.Note        `json:"notes"`
				PDFs  []syllabus.PDFResource `json:"pdfs"`
			}{
				Subject: sub,
				Notes:   s.Notes().QueryByOwner(sub.Code, subjectSemester),
				PDFs:    s.PDFs().QueryByOwner(sub.Code, subjectSemester),
			})
		case "md":
			fmt.Print(md)
		case "html":
			out, err := render.HTML(md)
			if err != nil {
				fatal("Failed to render HTML", err)
			}
			fmt.Print(out)
		case "toc":
			for _, h := range render.TOC(md) {
				fmt.Printf("%*s%s (#%s)\n", (h.Level-1)*2, "", h.Title, h.ID)
			}
		case "term", "":
			out, err := render.Terminal(md, subjectWidth, subjectStyle)
			if err != nil {
				fatal("Failed to render subject", err)
			}
			fmt.Print(out)
			printAttachments(s, sub.Code, subjectSemester)
		default:
			fmt.Fprintf(os.Stderr, "unknown format: %s\n", subjectFormat)
			os.Exit(1)
		}
	},
}

func printAttachments(s *syllabus.Session, code string, semID int) {
	notes := s.Notes().QueryByOwner(code, semID)
	pdfs := s.PDFs().QueryByOwner(code, semID)
	if len(notes) > 0 {
		fmt.Println("Notes:")
		for _, n := range notes {
			fmt.Printf("  %s  %s\n", n.ID, n.Title)
		}
	}
	if len(pdfs) > 0 {
		fmt.Println("PDFs:")
		for _, p := range pdfs {
			fmt.Printf("  %s  %s <%s>\n", p.ID, p.Title, p.URL)
		}
	}
}

var subjectUpdateCmd = &cobra.Command{
	Use:   "update [code]",
	Short: "Update subject fields",
	Long:  `Update the fields given as flags. List flags replace the whole list.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		var patch syllabus.SubjectPatch
		if flags.Changed("name") {
			patch.Name = &subjectName
		}
		if flags.Changed("credits") {
			patch.Credits = &subjectCredits
		}
		if flags.Changed("objective") {
			patch.Objective = &subjectObjective
		}
		if flags.Changed("topic") {
			patch.Topics = &subjectTopics
		}
		if flags.Changed("practical") {
			patch.Practicals = &subjectPracticals
		}
		if flags.Changed("activity") {
			patch.Activities = &subjectActivities
		}
		if flags.Changed("deliverable") {
			patch.Deliverables = &subjectDeliverables
		}

		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		if !s.Syllabus().UpdateSubject(ctx, subjectSemester, args[0], patch) {
			notFound("subject %s in semester %d", args[0], subjectSemester)
		}
		fmt.Printf("Subject '%s' updated.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(subjectCmd)
	subjectCmd.AddCommand(subjectShowCmd, subjectUpdateCmd)
	subjectCmd.PersistentFlags().IntVarP(&subjectSemester, "semester", "S", 1, "Semester ID")

	subjectShowCmd.Flags().StringVarP(&subjectFormat, "format", "f", "term", "Output format: term, md, html, toc or json")
	subjectShowCmd.Flags().IntVar(&subjectWidth, "width", 80, "Word wrap width for terminal output")
	subjectShowCmd.Flags().StringVar(&subjectStyle, "style", "", "Glamour style (default: auto)")

	f := subjectUpdateCmd.Flags()
	f.StringVar(&subjectName, "name", "", "Subject name")
	f.StringVar(&subjectCredits, "credits", "", "Credits label")
	f.StringVar(&subjectObjective, "objective", "", "Objective")
	f.StringArrayVar(&subjectTopics, "topic", nil, "Topic (repeatable)")
	f.StringArrayVar(&subjectPracticals, "practical", nil, "Practical (repeatable)")
	f.StringArrayVar(&subjectActivities, "activity", nil, "Activity (repeatable)")
	f.StringArrayVar(&subjectDeliverables, "deliverable", nil, "Deliverable (repeatable)")
}
