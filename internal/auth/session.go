package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/domain"
)

// Session identifies who is making a request. It is passed explicitly to
// services; nothing reads the current user from global state.
type Session struct {
	UserID    uuid.UUID
	Role      domain.Role
	SessionID string
}

// CanView reports whether the session's role may open v.
func (s Session) CanView(v domain.View) bool {
	return s.Role.CanView(v)
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// NewSessionID returns a random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
