package render

import (
	"strings"

	"github.com/aretw0/syllabus/pkg/core"
)

// NoteFromUnit drafts a note from a syllabus unit: the title is
// "<subject code> - <unit title>" and the body is the unit as a markdown
// heading followed by one bullet per content line.
func NoteFromUnit(subject core.Subject, semesterID int, unit core.Unit) core.NoteDraft {
	lines := unit.Content
	if len(lines) == 0 {
		lines = []string{""}
	}

	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(unit.Title)
	b.WriteString("\n\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(strings.Replace(line, "• ", "", 1))
	}

	return core.NoteDraft{
		Title:       subject.Code + " - " + unit.Title,
		Content:     b.String(),
		SubjectCode: subject.Code,
		SemesterID:  semesterID,
	}
}

// SubjectMarkdown lays out every unit of subject as a level-one heading
// followed by its content lines, the way the reader shows a subject.
func SubjectMarkdown(subject core.Subject) string {
	parts := make([]string, 0, len(subject.Units))
	for _, u := range subject.Units {
		parts = append(parts, "# "+u.Title+"\n"+strings.Join(u.Content, "\n"))
	}
	return strings.Join(parts, "\n\n")
}
