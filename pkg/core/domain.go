// Package core holds the syllabus domain types and the storage contract
// every adapter implements.
package core

import "time"

// Unit is an ordered content block inside a Subject.
// Callers address units by position; ID is a stable synthetic handle
// assigned when the unit enters a store.
type Unit struct {
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title   string   `json:"title" yaml:"title"`
	Content []string `json:"content" yaml:"content"`
}

// Subject is a course inside a Semester. Code is the natural key and is
// assumed (not enforced) to be unique within its semester.
type Subject struct {
	Code         string   `json:"code" yaml:"code"`
	Name         string   `json:"name" yaml:"name"`
	Credits      string   `json:"credits" yaml:"credits"`
	Objective    string   `json:"objective,omitempty" yaml:"objective,omitempty"`
	Units        []Unit   `json:"units" yaml:"units"`
	Practicals   []string `json:"practicals,omitempty" yaml:"practicals,omitempty"`
	Topics       []string `json:"topics,omitempty" yaml:"topics,omitempty"`
	Activities   []string `json:"activities,omitempty" yaml:"activities,omitempty"`
	Deliverables []string `json:"deliverables,omitempty" yaml:"deliverables,omitempty"`
}

// Semester is the top-level grouping of subjects.
// ID is chosen by the caller and is not checked for collisions.
type Semester struct {
	ID           int       `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	TotalCredits string    `json:"totalCredits" yaml:"totalCredits"`
	Subjects     []Subject `json:"subjects" yaml:"subjects"`
}

// Note is a user-authored document attached to a (subject, semester) pair.
// The pair is not validated against the syllabus.
type Note struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Content     string    `json:"content" yaml:"content"`
	SubjectCode string    `json:"subjectCode" yaml:"subjectCode"`
	SemesterID  int       `json:"semesterId" yaml:"semesterId"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// PDFResource is a user-registered link to an external PDF document.
type PDFResource struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	URL         string    `json:"url" yaml:"url"`
	SubjectCode string    `json:"subjectCode" yaml:"subjectCode"`
	SemesterID  int       `json:"semesterId" yaml:"semesterId"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Owner identifies the (subject, semester) pair notes and PDFs attach to.
type Owner struct {
	SubjectCode string
	SemesterID  int
}

// NoteDraft is the caller-supplied part of a new Note.
// The validate tags are consumed by the caller layer; stores never check them.
type NoteDraft struct {
	Title       string `validate:"required"`
	Content     string
	SubjectCode string `validate:"required"`
	SemesterID  int    `validate:"gte=1"`
}

// PDFDraft is the caller-supplied part of a new PDFResource.
type PDFDraft struct {
	Title       string `validate:"required"`
	URL         string `validate:"required,url"`
	SubjectCode string `validate:"required"`
	SemesterID  int    `validate:"gte=1"`
}
