package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/typed"
)

// SyllabusStore holds the semester → subject → unit hierarchy under
// KeySyllabus. Without valid persisted data it serves the built-in dataset.
//
// Units are addressed by position, as the reader shows them. Positions
// shift after DeleteUnit; the ByID variants address a unit by its stable id.
type SyllabusStore struct {
	value *typed.Value[[]core.Semester]
	opts  options

	mu        sync.RWMutex
	semesters []core.Semester
	defaults  bool
	dirty     bool
}

// NewSyllabusStore creates a store serving the built-in dataset until Load.
func NewSyllabusStore(storage core.Storage, opts ...Option) *SyllabusStore {
	return &SyllabusStore{
		value:     typed.NewValue[[]core.Semester](storage, KeySyllabus),
		opts:      newOptions(opts),
		semesters: DefaultSemesters(),
		defaults:  true,
	}
}

// Load replaces the hierarchy with the persisted one. Missing or corrupt
// data falls back to the built-in dataset and a corrupt blob is removed.
func (s *SyllabusStore) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	semesters, found, err := s.value.Load(ctx)
	switch {
	case errors.Is(err, typed.ErrDecode):
		s.opts.logger.Warn("persisted syllabus is corrupt, using built-in dataset", "key", KeySyllabus, "error", err)
		if rmErr := s.value.Remove(ctx); rmErr != nil {
			s.opts.logger.Error("failed to clear corrupt key", "key", KeySyllabus, "error", rmErr)
		}
		found = false
	case err != nil:
		s.opts.logger.Error("failed to load syllabus, using built-in dataset", "key", KeySyllabus, "error", err)
		found = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = false
	if !found || semesters == nil {
		s.semesters = DefaultSemesters()
		s.defaults = true
		return nil
	}

	backfillUnitIDs(semesters)
	s.semesters = semesters
	s.defaults = false
	return nil
}

// Semesters returns a deep copy of every semester, in order.
func (s *SyllabusStore) Semesters() []core.Semester {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CloneSemesters(s.semesters)
}

// Semester returns the first semester with id.
func (s *SyllabusStore) Semester(id int) (core.Semester, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sem := range s.semesters {
		if sem.ID == id {
			return sem.Clone(), true
		}
	}
	return core.Semester{}, false
}

// Subject returns the first subject with code in a semester with id semID.
func (s *SyllabusStore) Subject(semID int, code string) (core.Subject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.find(semID, code)
	if len(matches) == 0 {
		return core.Subject{}, false
	}
	m := matches[0]
	return s.semesters[m.sem].Subjects[m.sub].Clone(), true
}

// NextSemesterID returns the id the browser version assigned to a new
// semester: the current count plus one. It does not look for gaps or
// collisions.
func (s *SyllabusStore) NextSemesterID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.semesters) + 1
}

// UpdateSubject applies patch to a subject. Misses report false.
func (s *SyllabusStore) UpdateSubject(ctx context.Context, semID int, code string, patch core.SubjectPatch) bool {
	return s.mutateSubject(ctx, semID, code, "update subject", func(sub *core.Subject) bool {
		patch.Apply(sub)
		s.assignUnitIDs(sub.Units)
		return true
	})
}

// AddUnit appends unit to every matching subject and returns it with its id.
func (s *SyllabusStore) AddUnit(ctx context.Context, semID int, code string, unit core.Unit) (core.Unit, bool) {
	unit = core.CloneUnits([]core.Unit{unit})[0]
	if unit.ID == "" {
		unit.ID = s.opts.newID()
	}
	ok := s.mutateSubject(ctx, semID, code, "add unit "+unit.Title, func(sub *core.Subject) bool {
		sub.Units = append(sub.Units, core.CloneUnits([]core.Unit{unit})[0])
		return true
	})
	return unit, ok
}

// UpdateUnit replaces the unit at index. The replacement keeps the old
// unit's id unless it carries its own. Out-of-range indexes report false.
func (s *SyllabusStore) UpdateUnit(ctx context.Context, semID int, code string, index int, unit core.Unit) bool {
	return s.mutateSubject(ctx, semID, code, fmt.Sprintf("update unit %d", index), func(sub *core.Subject) bool {
		if index < 0 || index >= len(sub.Units) {
			return false
		}
		s.replaceUnit(sub, index, unit)
		return true
	})
}

// DeleteUnit removes the unit at index. Later units shift down by one.
func (s *SyllabusStore) DeleteUnit(ctx context.Context, semID int, code string, index int) bool {
	return s.mutateSubject(ctx, semID, code, fmt.Sprintf("delete unit %d", index), func(sub *core.Subject) bool {
		if index < 0 || index >= len(sub.Units) {
			return false
		}
		sub.Units = append(sub.Units[:index:index], sub.Units[index+1:]...)
		return true
	})
}

// UpdateUnitByID replaces the unit with unitID, wherever it sits now.
func (s *SyllabusStore) UpdateUnitByID(ctx context.Context, semID int, code, unitID string, unit core.Unit) bool {
	return s.mutateSubject(ctx, semID, code, "update unit "+unitID, func(sub *core.Subject) bool {
		idx := unitIndex(sub.Units, unitID)
		if idx < 0 {
			return false
		}
		unit.ID = unitID
		s.replaceUnit(sub, idx, unit)
		return true
	})
}

// DeleteUnitByID removes the unit with unitID.
func (s *SyllabusStore) DeleteUnitByID(ctx context.Context, semID int, code, unitID string) bool {
	return s.mutateSubject(ctx, semID, code, "delete unit "+unitID, func(sub *core.Subject) bool {
		idx := unitIndex(sub.Units, unitID)
		if idx < 0 {
			return false
		}
		sub.Units = append(sub.Units[:idx:idx], sub.Units[idx+1:]...)
		return true
	})
}

// AddSemester appends semester as given. Duplicate ids are kept side by
// side. Semester resolves to the first one; subject mutations reach every
// semester sharing the id.
func (s *SyllabusStore) AddSemester(ctx context.Context, semester core.Semester) core.Semester {
	semester = semester.Clone()
	for i := range semester.Subjects {
		s.assignUnitIDs(semester.Subjects[i].Units)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Semester, len(s.semesters), len(s.semesters)+1)
	copy(next, s.semesters)
	s.semesters = append(next, semester)
	s.defaults = false

	s.persist(withReason(ctx, "feat", "syllabus", "add semester "+semester.Name))
	return semester.Clone()
}

// Reset restores the built-in dataset and persists it.
func (s *SyllabusStore) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.semesters = DefaultSemesters()
	s.defaults = true
	s.persist(withReason(ctx, "chore", "syllabus", "reset to built-in dataset"))
}

// Flush writes a hierarchy whose last write failed and reports failures.
// A clean store is left alone.
func (s *SyllabusStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	if err := s.value.Save(ctx, s.semesters); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// ComponentType implements introspection.Component.
func (s *SyllabusStore) ComponentType() string {
	return "syllabus-store"
}

// State implements introspection.Introspectable.
func (s *SyllabusStore) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := SyllabusState{Key: KeySyllabus, Semesters: len(s.semesters), Defaults: s.defaults, Dirty: s.dirty}
	for _, sem := range s.semesters {
		st.Subjects += len(sem.Subjects)
		for _, sub := range sem.Subjects {
			st.Units += len(sub.Units)
		}
	}
	return st
}

// mutateSubject runs fn on a copy of every matched subject. If fn reports
// a change for any of them, the copies are swapped in and persisted.
func (s *SyllabusStore) mutateSubject(ctx context.Context, semID int, code, reason string, fn func(*core.Subject) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Semester, len(s.semesters))
	copy(next, s.semesters)

	changed := false
	for _, m := range s.find(semID, code) {
		sub := next[m.sem].Subjects[m.sub].Clone()
		if !fn(&sub) {
			continue
		}
		sem := next[m.sem]
		subjects := make([]core.Subject, len(sem.Subjects))
		copy(subjects, sem.Subjects)
		subjects[m.sub] = sub
		sem.Subjects = subjects
		next[m.sem] = sem
		changed = true
	}
	if !changed {
		return false
	}

	s.semesters = next
	s.defaults = false
	s.persist(withReason(ctx, "docs", "syllabus", fmt.Sprintf("%s in %s", reason, code)))
	return true
}

type subjectRef struct {
	sem, sub int
}

// find must be called with mu held. It returns every (semID, code) match
// in order.
func (s *SyllabusStore) find(semID int, code string) []subjectRef {
	var refs []subjectRef
	for si, sem := range s.semesters {
		if sem.ID != semID {
			continue
		}
		for ji, sub := range sem.Subjects {
			if sub.Code == code {
				refs = append(refs, subjectRef{sem: si, sub: ji})
			}
		}
	}
	return refs
}

func (s *SyllabusStore) replaceUnit(sub *core.Subject, idx int, unit core.Unit) {
	unit = core.CloneUnits([]core.Unit{unit})[0]
	if unit.ID == "" {
		unit.ID = sub.Units[idx].ID
	}
	sub.Units[idx] = unit
}

func (s *SyllabusStore) assignUnitIDs(units []core.Unit) {
	for i := range units {
		if units[i].ID == "" {
			units[i].ID = s.opts.newID()
		}
	}
}

func unitIndex(units []core.Unit, id string) int {
	for i, u := range units {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (s *SyllabusStore) persist(ctx context.Context) {
	s.dirty = true
	if err := s.value.Save(ctx, s.semesters); err != nil {
		s.opts.logger.Error("failed to persist syllabus", "key", KeySyllabus, "error", err)
		return
	}
	s.dirty = false
}
