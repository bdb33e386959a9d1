package git

import "testing"

func TestFormatChangeReason(t *testing.T) {
	tests := []struct {
		name    string
		ctype   string
		scope   string
		subject string
		body    string
		want    string
	}{
		{
			name:    "simple",
			ctype:   "feat",
			subject: "add semester",
			want:    "feat: add semester\n\nPowered-by: syllabus",
		},
		{
			name:    "with scope",
			ctype:   "fix",
			scope:   "store",
			subject: "repair notes",
			want:    "fix(store): repair notes\n\nPowered-by: syllabus",
		},
		{
			name:    "with body",
			ctype:   "docs",
			subject: "update unit",
			body:    "  Reworded Unit II.  ",
			want:    "docs: update unit\n\nReworded Unit II.\n\nPowered-by: syllabus",
		},
		{
			name:    "default type",
			subject: "update syllabus-data",
			want:    "chore: update syllabus-data\n\nPowered-by: syllabus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatChangeReason(tt.ctype, tt.scope, tt.subject, tt.body); got != tt.want {
				t.Errorf("FormatChangeReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendFooter(t *testing.T) {
	if got := AppendFooter("msg"); got != "msg\n\nPowered-by: syllabus" {
		t.Errorf("unexpected: %q", got)
	}
	already := "msg\n\nPowered-by: syllabus"
	if got := AppendFooter(already); got != already {
		t.Errorf("footer duplicated: %q", got)
	}
}
