// Package syllabus is the composition root for a local store of a degree
// program's syllabus, the notes a student attaches to each subject and the
// PDF links they collect along the way.
//
// The stores in pkg/store are optimistic: every mutation updates memory
// first and persists the whole collection synchronously afterwards. A
// failed write is logged and never rolled back. Corrupt persisted data
// heals itself on load.
//
// Storage is pluggable through core.Storage. The default adapter keeps one
// file per key in a directory, optionally versioned with git; SQLite, Redis
// and an in-memory adapter are also available.
//
// Usage:
//
//	s, err := syllabus.Open(ctx, "./data",
//		syllabus.WithVersioning(true),
//		syllabus.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer s.Close(ctx)
//
//	note := s.Notes().Add(ctx, syllabus.NoteDraft{
//		Title:       "Limits",
//		SubjectCode: "MAT101",
//		SemesterID:  1,
//	})
package syllabus
