package store

import (
	"context"
	"sync"

	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/typed"
)

// Header defaults shown until the user saves their own.
const (
	DefaultDepartmentName = "Department of Bioinformatics"
	DefaultProgramName    = "M.Sc. Bioinformatics Program"
)

// SettingsStore keeps the two header strings as plain text keys.
type SettingsStore struct {
	department *typed.Value[string]
	program    *typed.Value[string]
	opts       options

	mu             sync.RWMutex
	departmentName string
	programName    string
	// unsaved holds values whose last write failed, by key.
	unsaved map[string]string
}

// NewSettingsStore creates a store serving the defaults until Load.
func NewSettingsStore(storage core.Storage, opts ...Option) *SettingsStore {
	return &SettingsStore{
		department:     typed.NewValue[string](storage, KeyDepartment, typed.WithCodec(typed.Text)),
		program:        typed.NewValue[string](storage, KeyProgram, typed.WithCodec(typed.Text)),
		opts:           newOptions(opts),
		departmentName: DefaultDepartmentName,
		programName:    DefaultProgramName,
		unsaved:        make(map[string]string),
	}
}

// Load reads both keys. Absent or empty values keep the defaults.
func (s *SettingsStore) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dept := s.loadOne(ctx, s.department, DefaultDepartmentName)
	prog := s.loadOne(ctx, s.program, DefaultProgramName)

	s.mu.Lock()
	s.departmentName, s.programName = dept, prog
	clear(s.unsaved)
	s.mu.Unlock()
	return nil
}

func (s *SettingsStore) loadOne(ctx context.Context, v *typed.Value[string], fallback string) string {
	val, found, err := v.Load(ctx)
	if err != nil {
		s.opts.logger.Error("failed to load setting", "key", v.Key(), "error", err)
		return fallback
	}
	if !found || val == "" {
		return fallback
	}
	return val
}

// DepartmentName returns the department shown in the header.
func (s *SettingsStore) DepartmentName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.departmentName
}

// ProgramName returns the program shown in the header.
func (s *SettingsStore) ProgramName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.programName
}

// SetDepartmentName stores name. An empty name restores the default.
func (s *SettingsStore) SetDepartmentName(ctx context.Context, name string) {
	s.set(ctx, s.department, &s.departmentName, name, DefaultDepartmentName)
}

// SetProgramName stores name. An empty name restores the default.
func (s *SettingsStore) SetProgramName(ctx context.Context, name string) {
	s.set(ctx, s.program, &s.programName, name, DefaultProgramName)
}

func (s *SettingsStore) set(ctx context.Context, v *typed.Value[string], field *string, name, fallback string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		*field = fallback
	} else {
		*field = name
	}
	if err := v.Save(withReason(ctx, "chore", "settings", "set "+v.Key()), name); err != nil {
		s.opts.logger.Error("failed to persist setting", "key", v.Key(), "error", err)
		s.unsaved[v.Key()] = name
		return
	}
	delete(s.unsaved, v.Key())
}

// Flush retries settings whose last write failed and reports the first
// failure. Values never set are not written.
func (s *SettingsStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range []*typed.Value[string]{s.department, s.program} {
		name, ok := s.unsaved[v.Key()]
		if !ok {
			continue
		}
		if err := v.Save(ctx, name); err != nil {
			return err
		}
		delete(s.unsaved, v.Key())
	}
	return nil
}

// ComponentType implements introspection.Component.
func (s *SettingsStore) ComponentType() string {
	return "settings-store"
}

// State implements introspection.Introspectable.
func (s *SettingsStore) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]string{
		KeyDepartment: s.departmentName,
		KeyProgram:    s.programName,
	}
}
