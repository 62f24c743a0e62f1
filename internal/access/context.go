package access

import "context"

type contextKey string

const (
	userKey    contextKey = "user"
	sessionKey contextKey = "session"
)

// UserInfo describes the user behind a session.
type UserInfo struct {
	Name          string
	IsAdmin       bool
	PublicKeyFP   string
	IsAnonymous   bool
	AnonymousName string // e.g. "azure-tiger-42"
	RemoteAddr    string
}

// SessionInfo ties a session id to its user.
type SessionInfo struct {
	ID         string
	User       *UserInfo
	RemoteAddr string
}

// LocalUser is the user of a local, non-SSH session.
func LocalUser(name string) *UserInfo {
	return &UserInfo{Name: name, IsAdmin: true, RemoteAddr: "local"}
}

func WithUser(ctx context.Context, user *UserInfo) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (*UserInfo, bool) {
	user, ok := ctx.Value(userKey).(*UserInfo)
	return user, ok
}

func WithSession(ctx context.Context, session *SessionInfo) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func SessionFromContext(ctx context.Context) (*SessionInfo, bool) {
	session, ok := ctx.Value(sessionKey).(*SessionInfo)
	return session, ok
}

// SessionID returns the session id stored in ctx, or "".
func SessionID(ctx context.Context) string {
	if s, ok := SessionFromContext(ctx); ok && s != nil {
		return s.ID
	}
	return ""
}

// DisplayName is the name shown in audit entries and lock messages.
func (u *UserInfo) DisplayName() string {
	if u == nil {
		return "unknown"
	}
	if u.IsAnonymous {
		return u.AnonymousName
	}
	return u.Name
}
