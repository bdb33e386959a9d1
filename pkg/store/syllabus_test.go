package store

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/syllabus/pkg/adapters/memory"
	"github.com/aretw0/syllabus/pkg/core"
)

func loadedSyllabus(t *testing.T, s core.Storage, opts ...Option) *SyllabusStore {
	t.Helper()
	st := NewSyllabusStore(s, opts...)
	require.NoError(t, st.Load(context.Background()))
	return st
}

// threeUnitSubject seeds semester 9 with a subject holding units A, B, C.
func threeUnitSubject(t *testing.T, st *SyllabusStore) {
	t.Helper()
	st.AddSemester(context.Background(), core.Semester{
		ID:   9,
		Name: "Test Semester",
		Subjects: []core.Subject{{
			Code: "T 900",
			Name: "Testing",
			Units: []core.Unit{
				{Title: "A", Content: []string{"a"}},
				{Title: "B", Content: []string{"b"}},
				{Title: "C", Content: []string{"c"}},
			},
		}},
	})
}

func unitTitles(t *testing.T, st *SyllabusStore, semID int, code string) []string {
	t.Helper()
	sub, ok := st.Subject(semID, code)
	require.True(t, ok)
	var titles []string
	for _, u := range sub.Units {
		titles = append(titles, u.Title)
	}
	return titles
}

func TestDefaultSemesters(t *testing.T) {
	sems := DefaultSemesters()
	require.Len(t, sems, 4)

	wantSubjects := []int{7, 6, 5, 2}
	for i, sem := range sems {
		assert.Equal(t, i+1, sem.ID)
		assert.Len(t, sem.Subjects, wantSubjects[i], sem.Name)
		for _, sub := range sem.Subjects {
			assert.NotEmpty(t, sub.Code)
			for _, u := range sub.Units {
				assert.NotEmpty(t, u.ID, "%s/%s", sub.Code, u.Title)
			}
		}
	}

	first := sems[0].Subjects[0]
	assert.Equal(t, "BI 501", first.Code)
	assert.Equal(t, "Unit I", first.Units[0].Title)

	// Ids are deterministic and callers get independent copies.
	again := DefaultSemesters()
	assert.Equal(t, first.Units[0].ID, again[0].Subjects[0].Units[0].ID)
	sems[0].Subjects[0].Units[0].Title = "mutated"
	assert.Equal(t, "Unit I", DefaultSemesters()[0].Subjects[0].Units[0].Title)
}

func TestSyllabus_DefaultsWhenAbsent(t *testing.T) {
	s := memory.NewStorage()
	st := loadedSyllabus(t, s)

	assert.Empty(t, cmp.Diff(DefaultSemesters(), st.Semesters()))
	assert.False(t, s.Has(KeySyllabus), "loading defaults does not write")
	assert.True(t, st.State().(SyllabusState).Defaults)
}

func TestSyllabus_CorruptionFallsBackToDefaults(t *testing.T) {
	s := memory.NewStorage()
	s.Put(KeySyllabus, []byte(`{"not":"a list"`))

	st := loadedSyllabus(t, s)
	assert.Empty(t, cmp.Diff(DefaultSemesters(), st.Semesters()))
	assert.False(t, s.Has(KeySyllabus), "corrupt syllabus is cleared")
	assert.True(t, st.State().(SyllabusState).Defaults)
}

func TestSyllabus_FlushSkipsCleanStore(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStorage()
	st := loadedSyllabus(t, s)

	require.NoError(t, st.Flush(ctx))
	assert.Equal(t, 0, s.Writes())

	s.FailWrites(memory.ErrQuotaExceeded)
	st.AddUnit(ctx, 1, "BI 501", core.Unit{Title: "Retried"})
	assert.True(t, st.State().(SyllabusState).Dirty)

	s.FailWrites(nil)
	require.NoError(t, st.Flush(ctx))
	assert.False(t, st.State().(SyllabusState).Dirty)
	assert.Contains(t, unitTitles(t, loadedSyllabus(t, s), 1, "BI 501"), "Retried")
}

func TestSyllabus_ReloadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStorage()
	st := loadedSyllabus(t, s)

	st.UpdateSubject(ctx, 1, "BI 501", core.SubjectPatch{Objective: core.Ptr("Updated objective")})
	st.AddUnit(ctx, 1, "BI 501", core.Unit{Title: "Unit V", Content: []string{"Deep learning"}})

	reloaded := loadedSyllabus(t, s)
	assert.Empty(t, cmp.Diff(st.Semesters(), reloaded.Semesters()))
	assert.False(t, reloaded.State().(SyllabusState).Defaults)
}

func TestSyllabus_UpdateSubject(t *testing.T) {
	ctx := context.Background()
	st := loadedSyllabus(t, memory.NewStorage())

	ok := st.UpdateSubject(ctx, 1, "BI 501", core.SubjectPatch{
		Name:   core.Ptr("Bioinformatics I"),
		Topics: &[]string{"alignment"},
	})
	require.True(t, ok)

	sub, _ := st.Subject(1, "BI 501")
	assert.Equal(t, "Bioinformatics I", sub.Name)
	assert.Equal(t, "2+1", sub.Credits, "unpatched fields stay")
	assert.Equal(t, []string{"alignment"}, sub.Topics)

	t.Run("Misses", func(t *testing.T) {
		before := st.Semesters()
		assert.False(t, st.UpdateSubject(ctx, 99, "BI 501", core.SubjectPatch{Name: core.Ptr("x")}))
		assert.False(t, st.UpdateSubject(ctx, 1, "NOPE", core.SubjectPatch{Name: core.Ptr("x")}))
		assert.Empty(t, cmp.Diff(before, st.Semesters()))
	})
}

func TestSyllabus_UnitDeletionShiftsIndices(t *testing.T) {
	ctx := context.Background()
	st := loadedSyllabus(t, memory.NewStorage())
	threeUnitSubject(t, st)

	require.True(t, st.DeleteUnit(ctx, 9, "T 900", 1))
	assert.Equal(t, []string{"A", "C"}, unitTitles(t, st, 9, "T 900"))

	require.True(t, st.UpdateUnit(ctx, 9, "T 900", 1, core.Unit{Title: "X"}))
	assert.Equal(t, []string{"A", "X"}, unitTitles(t, st, 9, "T 900"))
}

func TestSyllabus_UnitIndexOutOfRange(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStorage()
	st := loadedSyllabus(t, s)
	threeUnitSubject(t, st)
	writes := s.Writes()

	assert.False(t, st.UpdateUnit(ctx, 9, "T 900", 3, core.Unit{Title: "X"}))
	assert.False(t, st.UpdateUnit(ctx, 9, "T 900", -1, core.Unit{Title: "X"}))
	assert.False(t, st.DeleteUnit(ctx, 9, "T 900", 7))
	_, added := st.AddUnit(ctx, 9, "NOPE", core.Unit{Title: "X"})
	assert.False(t, added)

	assert.Equal(t, []string{"A", "B", "C"}, unitTitles(t, st, 9, "T 900"))
	assert.Equal(t, writes, s.Writes())
}

func TestSyllabus_UnitIDs(t *testing.T) {
	ctx := context.Background()
	st := loadedSyllabus(t, memory.NewStorage(), WithIDGenerator(sequentialIDs()))
	threeUnitSubject(t, st)

	sub, _ := st.Subject(9, "T 900")
	idA, idB, idC := sub.Units[0].ID, sub.Units[1].ID, sub.Units[2].ID
	assert.NotEqual(t, idA, idB)

	// Replacing by position keeps the slot's id.
	require.True(t, st.UpdateUnit(ctx, 9, "T 900", 0, core.Unit{Title: "A2"}))
	sub, _ = st.Subject(9, "T 900")
	assert.Equal(t, idA, sub.Units[0].ID)

	// Id-based addressing survives earlier deletions.
	require.True(t, st.DeleteUnit(ctx, 9, "T 900", 0))
	require.True(t, st.UpdateUnitByID(ctx, 9, "T 900", idC, core.Unit{Title: "C2"}))
	assert.Equal(t, []string{"B", "C2"}, unitTitles(t, st, 9, "T 900"))

	require.True(t, st.DeleteUnitByID(ctx, 9, "T 900", idB))
	assert.Equal(t, []string{"C2"}, unitTitles(t, st, 9, "T 900"))

	assert.False(t, st.DeleteUnitByID(ctx, 9, "T 900", idB))
	assert.False(t, st.UpdateUnitByID(ctx, 9, "T 900", "missing", core.Unit{}))

	u, ok := st.AddUnit(ctx, 9, "T 900", core.Unit{Title: "D"})
	require.True(t, ok)
	assert.NotEmpty(t, u.ID)
}

func TestSyllabus_AddSemesterAllowsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	st := loadedSyllabus(t, memory.NewStorage())

	assert.Equal(t, 5, st.NextSemesterID())
	st.AddSemester(ctx, core.Semester{ID: 5, Name: "First five"})
	st.AddSemester(ctx, core.Semester{ID: 5, Name: "Second five"})

	sems := st.Semesters()
	require.Len(t, sems, 6)
	assert.Equal(t, "First five", sems[4].Name)
	assert.Equal(t, "Second five", sems[5].Name)

	got, ok := st.Semester(5)
	require.True(t, ok)
	assert.Equal(t, "First five", got.Name, "lookups resolve to the first match")
	assert.Equal(t, 7, st.NextSemesterID())

	t.Run("Subject In Later Duplicate", func(t *testing.T) {
		st := loadedSyllabus(t, memory.NewStorage())
		st.AddSemester(ctx, core.Semester{ID: 5, Name: "First five"})
		st.AddSemester(ctx, core.Semester{ID: 5, Name: "Second five", Subjects: []core.Subject{{Code: "X"}}})

		_, ok := st.AddUnit(ctx, 5, "X", core.Unit{Title: "U1"})
		require.True(t, ok)
		assert.Equal(t, []string{"U1"}, unitTitles(t, st, 5, "X"))

		require.True(t, st.UpdateUnit(ctx, 5, "X", 0, core.Unit{Title: "U1 edited"}))
		assert.True(t, st.UpdateSubject(ctx, 5, "X", core.SubjectPatch{Name: core.Ptr("Renamed")}))

		sems := st.Semesters()
		assert.Empty(t, sems[4].Subjects)
		require.Len(t, sems[5].Subjects, 1)
		assert.Equal(t, "Renamed", sems[5].Subjects[0].Name)
		assert.Equal(t, "U1 edited", sems[5].Subjects[0].Units[0].Title)

		require.True(t, st.DeleteUnit(ctx, 5, "X", 0))
		assert.Empty(t, unitTitles(t, st, 5, "X"))
	})

	t.Run("Subject In Every Duplicate", func(t *testing.T) {
		st := loadedSyllabus(t, memory.NewStorage())
		st.AddSemester(ctx, core.Semester{ID: 5, Name: "First five", Subjects: []core.Subject{{Code: "X"}}})
		st.AddSemester(ctx, core.Semester{ID: 5, Name: "Second five", Subjects: []core.Subject{{Code: "X"}}})

		_, ok := st.AddUnit(ctx, 5, "X", core.Unit{Title: "Shared", Content: []string{"c"}})
		require.True(t, ok)

		sems := st.Semesters()
		assert.Equal(t, "Shared", sems[4].Subjects[0].Units[0].Title)
		assert.Equal(t, "Shared", sems[5].Subjects[0].Units[0].Title)
	})
}

func TestSyllabus_AddSemesterDoesNotAliasCaller(t *testing.T) {
	ctx := context.Background()
	st := loadedSyllabus(t, memory.NewStorage())

	units := []core.Unit{{Title: "A"}}
	st.AddSemester(ctx, core.Semester{ID: 5, Subjects: []core.Subject{{Code: "X", Units: units}}})
	units[0].Title = "mutated"

	assert.Equal(t, []string{"A"}, unitTitles(t, st, 5, "X"))
}

func TestSyllabus_Reset(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStorage()
	st := loadedSyllabus(t, s)
	threeUnitSubject(t, st)

	st.Reset(ctx)
	assert.Empty(t, cmp.Diff(DefaultSemesters(), st.Semesters()))
	assert.Empty(t, cmp.Diff(DefaultSemesters(), loadedSyllabus(t, s).Semesters()))
}

func TestSyllabus_WriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStorage()
	st := loadedSyllabus(t, s)
	s.FailWrites(memory.ErrQuotaExceeded)

	_, ok := st.AddUnit(ctx, 1, "BI 501", core.Unit{Title: "Unsaved"})
	require.True(t, ok)

	sub, _ := st.Subject(1, "BI 501")
	assert.Equal(t, "Unsaved", sub.Units[len(sub.Units)-1].Title)
	assert.Error(t, st.Flush(ctx))
}
