package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/syllabus"
	"github.com/aretw0/syllabus/internal/validate"
	"github.com/aretw0/syllabus/pkg/render"
)

var (
	noteSemester int
	noteSubject  string
	noteTitle    string
	noteContent  string
	noteFile     string
	noteJSON     bool
	noteFormat   string
	noteWidth    int
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes attached to subjects",
}

// readContent returns --content, or the contents of --file ("-" is stdin).
func readContent() (string, bool) {
	if noteFile == "" {
		return noteContent, false
	}
	var data []byte
	var err error
	if noteFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(noteFile)
	}
	if err != nil {
		fatal("Failed to read content", err)
	}
	return string(data), true
}

var noteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		content, _ := readContent()
		draft := syllabus.NoteDraft{
			Title:       noteTitle,
			Content:     content,
			SubjectCode: noteSubject,
			SemesterID:  noteSemester,
		}
		if err := validate.Struct(draft); err != nil {
			fatal("Invalid note", err)
		}

		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		note := s.Notes().Add(ctx, draft)
		fmt.Printf("Note '%s' saved (%s).\n", note.Title, note.ID)
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, optionally for one subject",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		notes := s.Notes().All()
		if noteSubject != "" {
			notes = s.Notes().QueryByOwner(noteSubject, noteSemester)
		}

		if noteJSON {
			printJSON(notes)
			return
		}
		for _, n := range notes {
			fmt.Printf("%s  [%s/%d] %s  (updated %s)\n", n.ID, n.SubjectCode, n.SemesterID, n.Title, n.UpdatedAt.Format("2006-01-02 15:04"))
		}
	},
}

var noteUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change a note's fields",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		var patch syllabus.NotePatch
		if flags.Changed("title") {
			patch.Title = &noteTitle
		}
		if content, fromFile := readContent(); fromFile || flags.Changed("content") {
			patch.Content = &content
		}
		if flags.Changed("subject") {
			patch.SubjectCode = &noteSubject
		}
		if flags.Changed("semester") {
			patch.SemesterID = &noteSemester
		}
		if err := validate.Struct(patch); err != nil {
			fatal("Invalid note", err)
		}

		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		if !s.Notes().Update(ctx, args[0], patch) {
			notFound("note %s", args[0])
		}
		fmt.Printf("Note %s updated.\n", args[0])
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		if !s.Notes().Delete(ctx, args[0]) {
			notFound("note %s", args[0])
		}
		fmt.Printf("Note %s deleted.\n", args[0])
	},
}

var noteReadCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Read a note",
	Long:  `Read a note. Formats: term (rendered, default), md, html, toc, json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		note, ok := s.Notes().Get(args[0])
		if !ok {
			notFound("note %s", args[0])
		}

		switch noteFormat {
		case "json":
			printJSON(note)
		case "md":
			fmt.Print(note.Content)
		case "html":
			out, err := render.HTML(note.Content)
			if err != nil {
				fatal("Failed to render HTML", err)
			}
			fmt.Print(out)
		case "toc":
			for _, h := range render.TOC(note.Content) {
				fmt.Printf("%*s%s (#%s)\n", (h.Level-1)*2, "", h.Title, h.ID)
			}
		default:
			out, err := render.Terminal("# "+note.Title+"\n\n"+note.Content, noteWidth, "")
			if err != nil {
				fatal("Failed to render note", err)
			}
			fmt.Print(out)
		}
	},
}

var noteFromUnitCmd = &cobra.Command{
	Use:   "from-unit [index|id]",
	Short: "Create a note from a syllabus unit",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, ctx := openSession(cmd)
		defer closeSession(ctx, s)

		sub, ok := s.Syllabus().Subject(noteSemester, noteSubject)
		if !ok {
			notFound("subject %s in semester %d", noteSubject, noteSemester)
		}

		idx := -1
		if i, err := strconv.Atoi(args[0]); err == nil {
			idx = i
		} else {
			for i, u := range sub.Units {
				if u.ID == args[0] {
					idx = i
					break
				}
			}
		}
		if idx < 0 || idx >= len(sub.Units) {
			notFound("unit %s of %s", args[0], sub.Code)
		}

		note := s.Notes().Add(ctx, render.NoteFromUnit(sub, noteSemester, sub.Units[idx]))
		fmt.Printf("Note '%s' saved (%s).\n", note.Title, note.ID)
	},
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteAddCmd, noteListCmd, noteUpdateCmd, noteDeleteCmd, noteReadCmd, noteFromUnitCmd)

	for _, c := range []*cobra.Command{noteAddCmd, noteListCmd, noteUpdateCmd, noteFromUnitCmd} {
		c.Flags().IntVarP(&noteSemester, "semester", "S", 1, "Semester ID")
		c.Flags().StringVarP(&noteSubject, "subject", "c", "", "Subject code")
	}
	for _, c := range []*cobra.Command{noteAddCmd, noteUpdateCmd} {
		c.Flags().StringVar(&noteTitle, "title", "", "Note title")
		c.Flags().StringVar(&noteContent, "content", "", "Markdown content")
		c.Flags().StringVar(&noteFile, "file", "", "Read content from a file (- for stdin)")
	}
	noteAddCmd.MarkFlagRequired("title")
	noteAddCmd.MarkFlagRequired("subject")
	noteFromUnitCmd.MarkFlagRequired("subject")

	noteListCmd.Flags().BoolVar(&noteJSON, "json", false, "Output in JSON format")
	noteReadCmd.Flags().StringVarP(&noteFormat, "format", "f", "term", "Output format: term, md, html, toc or json")
	noteReadCmd.Flags().IntVar(&noteWidth, "width", 80, "Word wrap width for terminal output")
}
