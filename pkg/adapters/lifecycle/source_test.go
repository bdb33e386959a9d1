package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/syllabus/pkg/core"
)

func TestSource_Bridges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 1)
	src := NewSource(in)
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	in <- core.Event{Type: core.EventModify, Key: "notes"}

	select {
	case e := <-src.Events():
		if e.String() != "MODIFY notes" {
			t.Errorf("unexpected event: %s", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	close(in)
	select {
	case _, ok := <-src.Events():
		if ok {
			t.Error("expected output to close after input closes")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for close")
	}
}
