package store

import (
	"context"
	"time"

	"github.com/aretw0/syllabus/pkg/core"
)

// PDFStore holds PDF link resources under KeyPDFs.
type PDFStore struct {
	*Collection[core.PDFResource]
}

// NewPDFStore creates an empty store. Call Load before use.
func NewPDFStore(storage core.Storage, opts ...Option) *PDFStore {
	return &PDFStore{newCollection(storage, "pdfs", KeyPDFs, accessors[core.PDFResource]{
		id: func(r *core.PDFResource) *string { return &r.ID },
		owner: func(r core.PDFResource) core.Owner {
			return core.Owner{SubjectCode: r.SubjectCode, SemesterID: r.SemesterID}
		},
		created: func(r *core.PDFResource) *time.Time { return &r.CreatedAt },
		updated: func(r *core.PDFResource) *time.Time { return &r.UpdatedAt },
	}, opts)}
}

// Add registers a PDF link. The URL is stored as given.
func (s *PDFStore) Add(ctx context.Context, draft core.PDFDraft) core.PDFResource {
	return s.insert(ctx, core.PDFResource{
		Title:       draft.Title,
		URL:         draft.URL,
		SubjectCode: draft.SubjectCode,
		SemesterID:  draft.SemesterID,
	}, "add pdf "+draft.Title)
}

// Update applies patch to the resource with id. It reports false on a miss.
func (s *PDFStore) Update(ctx context.Context, id string, patch core.PDFPatch) bool {
	_, ok := s.update(ctx, id, patch.Apply)
	return ok
}

// ComponentType implements introspection.Component.
func (s *PDFStore) ComponentType() string {
	return "pdf-store"
}

// State implements introspection.Introspectable.
func (s *PDFStore) State() any {
	return CollectionState{Key: KeyPDFs, Count: s.Len(), Loaded: s.Loaded(), Dirty: s.Dirty()}
}
