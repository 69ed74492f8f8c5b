package shared

import (
	"context"

	"github.com/google/uuid"
)

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// HostFromContext returns the authenticated host, if any.
func HostFromContext(ctx context.Context) (uuid.UUID, bool) {
	sess := SessionFromContext(ctx)
	if sess == nil || sess.HostID == uuid.Nil {
		return uuid.Nil, false
	}
	return sess.HostID, true
}
