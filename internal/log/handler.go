// Package log enriches slog records with per-request context: the
// request id, and the acting user once authentication has run.
package log

import (
	"context"
	"log/slog"

	"github.com/tabletophq/groupfinder/internal/requestid"
)

type actorKey struct{}

// WithActor tags ctx with the authenticated user's id. The auth
// middleware calls it after validating the token, so every log line
// below that point says who acted.
func WithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ContextHandler wraps an slog.Handler and adds the context attributes
// before delegating to it.
type ContextHandler struct {
	inner slog.Handler
}

func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := requestid.FromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if userID, ok := ctx.Value(actorKey{}).(int64); ok {
		r.AddAttrs(slog.Int64("user_id", userID))
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
