package auth

import "context"

type ctxKey string

const (
	userIDKey    ctxKey = "user_id"
	sessionIDKey ctxKey = "session_id"
)

// Session identifies one signed-in device of a user.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// WithSession stores the authenticated session in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	ctx = context.WithValue(ctx, userIDKey, s.UserID)
	return context.WithValue(ctx, sessionIDKey, s.ID)
}

// UserIDFrom returns the user of the request, if any.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// SessionIDFrom returns the session id of the request, if any.
func SessionIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

// ContextSession resolves the current user from the request context
// populated by the auth middleware.
type ContextSession struct{}

func (ContextSession) CurrentUser(ctx context.Context) (string, bool) {
	return UserIDFrom(ctx)
}
