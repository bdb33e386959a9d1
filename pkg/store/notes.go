package store

import (
	"context"
	"time"

	"github.com/aretw0/syllabus/pkg/core"
)

// NotesStore holds the user's notes under KeyNotes.
type NotesStore struct {
	*Collection[core.Note]
}

// NewNotesStore creates an empty store. Call Load before use.
func NewNotesStore(storage core.Storage, opts ...Option) *NotesStore {
	return &NotesStore{newCollection(storage, "notes", KeyNotes, accessors[core.Note]{
		id:      func(n *core.Note) *string { return &n.ID },
		owner:   func(n core.Note) core.Owner { return core.Owner{SubjectCode: n.SubjectCode, SemesterID: n.SemesterID} },
		created: func(n *core.Note) *time.Time { return &n.CreatedAt },
		updated: func(n *core.Note) *time.Time { return &n.UpdatedAt },
	}, opts)}
}

// Add creates a note with a fresh id and timestamps. The draft is not validated.
func (s *NotesStore) Add(ctx context.Context, draft core.NoteDraft) core.Note {
	return s.insert(ctx, core.Note{
		Title:       draft.Title,
		Content:     draft.Content,
		SubjectCode: draft.SubjectCode,
		SemesterID:  draft.SemesterID,
	}, "add note "+draft.Title)
}

// Update applies patch to the note with id and refreshes UpdatedAt.
// It reports false when no note has that id.
func (s *NotesStore) Update(ctx context.Context, id string, patch core.NotePatch) bool {
	_, ok := s.update(ctx, id, patch.Apply)
	return ok
}

// ComponentType implements introspection.Component.
func (s *NotesStore) ComponentType() string {
	return "notes-store"
}

// State implements introspection.Introspectable.
func (s *NotesStore) State() any {
	return CollectionState{Key: KeyNotes, Count: s.Len(), Loaded: s.Loaded(), Dirty: s.Dirty()}
}
