package store

// Storage keys. They match the layout the browser version kept in
// localStorage, so exported data stays interchangeable.
const (
	KeySyllabus   = "syllabus-data"
	KeyNotes      = "syllabus-notes"
	KeyPDFs       = "syllabus-pdfs"
	KeyDepartment = "department-name"
	KeyProgram    = "program-name"
)

// Keys lists every key a session owns.
var Keys = []string{KeySyllabus, KeyNotes, KeyPDFs, KeyDepartment, KeyProgram}
