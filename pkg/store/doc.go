// Package store implements the in-memory stores behind a syllabus session:
// the syllabus hierarchy, notes, PDF links and header settings.
//
// Each store loads once from a core.Storage and then serves reads from
// memory. Mutations swap in a fresh copy of the affected data under a
// write lock and synchronously rewrite the whole persisted blob. A failed
// write is logged and the in-memory change stands, so what callers see can
// run ahead of what a reload would return.
//
// Lookups that miss (unknown id, semester, subject or unit index) change
// nothing and report false. They never return an error.
package store
