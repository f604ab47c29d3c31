package shared

import "context"

type sessionContextKey struct{}

type principalContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithPrincipal stores the authenticated principal.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal placed by the session middleware,
// falling back to the session itself.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if p, ok := ctx.Value(principalContextKey{}).(Principal); ok && p.UserID != 0 {
		return p, true
	}
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.Principal()
	}
	return Principal{}, false
}
