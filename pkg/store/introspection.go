package store

import "github.com/aretw0/introspection"

// CollectionState is the introspection snapshot of a notes or PDF store.
type CollectionState struct {
	Key    string `json:"key"`
	Count  int    `json:"count"`
	Loaded bool   `json:"loaded"`
	Dirty  bool   `json:"dirty"`
}

// SyllabusState is the introspection snapshot of the syllabus store.
type SyllabusState struct {
	Key       string `json:"key"`
	Semesters int    `json:"semesters"`
	Subjects  int    `json:"subjects"`
	Units     int    `json:"units"`
	Defaults  bool   `json:"defaults"`
	Dirty     bool   `json:"dirty"`
}

var (
	_ introspection.Introspectable = (*NotesStore)(nil)
	_ introspection.Component      = (*NotesStore)(nil)
	_ introspection.Introspectable = (*PDFStore)(nil)
	_ introspection.Component      = (*PDFStore)(nil)
	_ introspection.Introspectable = (*SyllabusStore)(nil)
	_ introspection.Component      = (*SyllabusStore)(nil)
	_ introspection.Introspectable = (*SettingsStore)(nil)
	_ introspection.Component      = (*SettingsStore)(nil)
)
