// Package requestid tags every API request with an id so log lines,
// error responses, and support tickets can be correlated.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the wire name for the request id, inbound and outbound.
const Header = "X-Request-ID"

type ctxKey struct{}

// New returns a fresh request id (UUID v4).
func New() string {
	return uuid.NewString()
}

// NewContext returns a copy of ctx carrying the request id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request id in ctx, or "" when the request
// was never tagged.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
