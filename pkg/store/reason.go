package store

import (
	"context"

	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/git"
)

// withReason attaches a commit message for versioned storage unless the
// caller already supplied one.
func withReason(ctx context.Context, ctype, scope, subject string) context.Context {
	if msg, ok := ctx.Value(core.ChangeReasonKey).(string); ok && msg != "" {
		return ctx
	}
	return context.WithValue(ctx, core.ChangeReasonKey, git.FormatChangeReason(ctype, scope, subject, ""))
}
