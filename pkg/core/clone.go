package core

// CloneUnits deep-copies a unit slice.
func CloneUnits(units []Unit) []Unit {
	if units == nil {
		return nil
	}
	out := make([]Unit, len(units))
	for i, u := range units {
		out[i] = Unit{ID: u.ID, Title: u.Title, Content: cloneStrings(u.Content)}
	}
	return out
}

// Clone deep-copies a subject.
func (s Subject) Clone() Subject {
	s.Units = CloneUnits(s.Units)
	s.Practicals = cloneStrings(s.Practicals)
	s.Topics = cloneStrings(s.Topics)
	s.Activities = cloneStrings(s.Activities)
	s.Deliverables = cloneStrings(s.Deliverables)
	return s
}

// Clone deep-copies a semester and all of its subjects.
func (s Semester) Clone() Semester {
	if s.Subjects != nil {
		subjects := make([]Subject, len(s.Subjects))
		for i, sub := range s.Subjects {
			subjects[i] = sub.Clone()
		}
		s.Subjects = subjects
	}
	return s
}

// CloneSemesters deep-copies a semester slice.
func CloneSemesters(semesters []Semester) []Semester {
	if semesters == nil {
		return nil
	}
	out := make([]Semester, len(semesters))
	for i, s := range semesters {
		out[i] = s.Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
