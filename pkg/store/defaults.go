package store

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/syllabus/pkg/core"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var (
	defaultsOnce sync.Once
	defaults     []core.Semester
	defaultsErr  error
)

// unitNamespace seeds deterministic ids for units that were never persisted
// with one, so ids stay stable across reloads until the first write.
var unitNamespace = uuid.MustParse("6f1c8a52-3d0e-4b7a-9c55-2e4f0b8d91a7")

// DefaultSemesters returns a fresh copy of the built-in dataset.
func DefaultSemesters() []core.Semester {
	defaultsOnce.Do(func() {
		var semesters []core.Semester
		if err := yaml.Unmarshal(defaultsYAML, &semesters); err != nil {
			defaultsErr = fmt.Errorf("built-in dataset: %w", err)
			return
		}
		backfillUnitIDs(semesters)
		defaults = semesters
	})
	if defaultsErr != nil {
		panic(defaultsErr)
	}
	return core.CloneSemesters(defaults)
}

// backfillUnitIDs assigns deterministic ids to units that lack one.
// It reports whether any id was assigned.
func backfillUnitIDs(semesters []core.Semester) bool {
	changed := false
	for si := range semesters {
		for ji := range semesters[si].Subjects {
			sub := &semesters[si].Subjects[ji]
			for ui := range sub.Units {
				if sub.Units[ui].ID != "" {
					continue
				}
				name := fmt.Sprintf("%d/%s/%d/%s", semesters[si].ID, sub.Code, ui, sub.Units[ui].Title)
				sub.Units[ui].ID = uuid.NewSHA1(unitNamespace, []byte(name)).String()
				changed = true
			}
		}
	}
	return changed
}
