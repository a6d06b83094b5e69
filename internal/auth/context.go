package auth

import (
	"context"

	"github.com/kaaratech/mcq-assessment/internal/identity"
)

type ctxKey string

const ctxKeyStudent ctxKey = "student"

func WithStudent(ctx context.Context, st identity.Student) context.Context {
	return context.WithValue(ctx, ctxKeyStudent, st)
}

func StudentFromContext(ctx context.Context) (identity.Student, bool) {
	st, ok := ctx.Value(ctxKeyStudent).(identity.Student)
	return st, ok
}
