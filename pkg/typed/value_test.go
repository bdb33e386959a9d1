package typed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/syllabus/pkg/adapters/memory"
	"github.com/aretw0/syllabus/pkg/typed"
)

type course struct {
	Code    string   `json:"code" yaml:"code"`
	Credits string   `json:"credits" yaml:"credits"`
	Topics  []string `json:"topics,omitempty" yaml:"topics,omitempty"`
}

func TestValue_JSON(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	v := typed.NewValue[[]course](store, "courses")

	_, found, err := v.Load(ctx)
	if err != nil || found {
		t.Fatalf("expected absent value, got found=%v err=%v", found, err)
	}

	in := []course{{Code: "BIO101", Credits: "4", Topics: []string{"cells"}}}
	if err := v.Save(ctx, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, _ := store.Load(ctx, "courses")
	if string(raw) != `[{"code":"BIO101","credits":"4","topics":["cells"]}]` {
		t.Errorf("unexpected encoding: %s", raw)
	}

	out, found, err := v.Load(ctx)
	if err != nil || !found {
		t.Fatalf("Load failed: found=%v err=%v", found, err)
	}
	if len(out) != 1 || out[0].Topics[0] != "cells" {
		t.Errorf("unexpected value: %+v", out)
	}
}

func TestValue_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	store.Put("courses", []byte("{not json"))

	v := typed.NewValue[[]course](store, "courses")
	_, found, err := v.Load(ctx)
	if !found {
		t.Error("corrupt value should still be reported as found")
	}
	if !errors.Is(err, typed.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}

	if err := v.Remove(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Has("courses") {
		t.Error("Remove should delete the key")
	}
}

func TestValue_StorageError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	store.FailWrites(memory.ErrQuotaExceeded)

	v := typed.NewValue[string](store, "program-name", typed.WithCodec(typed.Text))
	if err := v.Save(ctx, "x"); !errors.Is(err, memory.ErrQuotaExceeded) {
		t.Errorf("expected quota error, got %v", err)
	}
}

func TestValue_Text(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	v := typed.NewValue[string](store, "department-name", typed.WithCodec(typed.Text))

	if err := v.Save(ctx, "Department of Genomics"); err != nil {
		t.Fatal(err)
	}
	raw, _ := store.Load(ctx, "department-name")
	if string(raw) != "Department of Genomics" {
		t.Errorf("text codec should store verbatim, got %q", raw)
	}

	got, found, err := v.Load(ctx)
	if err != nil || !found || got != "Department of Genomics" {
		t.Errorf("unexpected load: %q %v %v", got, found, err)
	}
}

func TestValue_YAML(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	v := typed.NewValue[course](store, "export", typed.WithCodec(typed.YAML))

	if err := v.Save(ctx, course{Code: "BIO102", Credits: "3"}); err != nil {
		t.Fatal(err)
	}
	got, _, err := v.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Code != "BIO102" {
		t.Errorf("unexpected value: %+v", got)
	}
}
