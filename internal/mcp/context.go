package mcp

import (
	"context"

	"github.com/bobmcallan/openvault-portal/internal/session"
)

// userContextKey is the context key for per-request user information.
type userContextKey struct{}

// UserContext holds the identity a tool call runs as.
type UserContext struct {
	UserID int64
	Email  string
}

// WithUserContext returns a new context with the given UserContext attached.
func WithUserContext(ctx context.Context, uc UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, uc)
}

// GetUserContext extracts the UserContext from the context, if present.
func GetUserContext(ctx context.Context) (UserContext, bool) {
	uc, ok := ctx.Value(userContextKey{}).(UserContext)
	return uc, ok
}

func userContextOf(s *session.Session) UserContext {
	return UserContext{UserID: s.UserID, Email: s.Email}
}
