package httpserver

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

var reqIDKey ctxKey

func withReqID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reqIDKey, id)
}

func reqID(ctx context.Context) string {
	if v, ok := ctx.Value(reqIDKey).(string); ok {
		return v
	}
	return ""
}

func newReqID() string { return uuid.NewString() }
