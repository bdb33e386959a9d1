package core

// NotePatch lists the Note fields an update may change.
// Nil fields are left untouched. ID and CreatedAt are not patchable.
type NotePatch struct {
	Title       *string `validate:"omitnil,min=1"`
	Content     *string
	SubjectCode *string `validate:"omitnil,min=1"`
	SemesterID  *int    `validate:"omitnil,gte=1"`
}

// Apply copies the set fields of p onto n.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.SubjectCode != nil {
		n.SubjectCode = *p.SubjectCode
	}
	if p.SemesterID != nil {
		n.SemesterID = *p.SemesterID
	}
}

// PDFPatch lists the PDFResource fields an update may change.
type PDFPatch struct {
	Title       *string `validate:"omitnil,min=1"`
	URL         *string `validate:"omitnil,url"`
	SubjectCode *string `validate:"omitnil,min=1"`
	SemesterID  *int    `validate:"omitnil,gte=1"`
}

// Apply copies the set fields of p onto r.
func (p PDFPatch) Apply(r *PDFResource) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.URL != nil {
		r.URL = *p.URL
	}
	if p.SubjectCode != nil {
		r.SubjectCode = *p.SubjectCode
	}
	if p.SemesterID != nil {
		r.SemesterID = *p.SemesterID
	}
}

// SubjectPatch lists the Subject fields UpdateSubject may change.
// Code is the lookup key and cannot be patched.
type SubjectPatch struct {
	Name         *string
	Credits      *string
	Objective    *string
	Units        *[]Unit
	Practicals   *[]string
	Topics       *[]string
	Activities   *[]string
	Deliverables *[]string
}

// Apply copies the set fields of p onto s. Slices are copied so the
// subject never aliases caller memory.
func (p SubjectPatch) Apply(s *Subject) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Credits != nil {
		s.Credits = *p.Credits
	}
	if p.Objective != nil {
		s.Objective = *p.Objective
	}
	if p.Units != nil {
		s.Units = CloneUnits(*p.Units)
	}
	if p.Practicals != nil {
		s.Practicals = cloneStrings(*p.Practicals)
	}
	if p.Topics != nil {
		s.Topics = cloneStrings(*p.Topics)
	}
	if p.Activities != nil {
		s.Activities = cloneStrings(*p.Activities)
	}
	if p.Deliverables != nil {
		s.Deliverables = cloneStrings(*p.Deliverables)
	}
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
