package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/catalog"
)

// Context keys for middleware values
type ctxKey string

const (
	ctxKeySession    ctxKey = "session"
	ctxKeyCatalog    ctxKey = "catalog"
	ctxKeySessionMgr ctxKey = "session_mgr"
)

// SessionMiddleware registers a session for each connection and ends it
// on disconnect.
func SessionMiddleware(sessionMgr *SessionManager) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			user := GetUserFromContext(s.Context())
			if user == nil {
				user = &access.UserInfo{
					IsAnonymous:   true,
					AnonymousName: "unknown",
					RemoteAddr:    s.RemoteAddr().String(),
				}
				s.Context().SetValue(ctxKeyUser, user)
			}

			session := sessionMgr.CreateSession(s.Context(), user, s.RemoteAddr().String())
			s.Context().SetValue(ctxKeySession, session)
			s.Context().SetValue(ctxKeySessionMgr, sessionMgr)

			// The SSH context is cancelled by now.
			defer sessionMgr.EndSession(context.Background(), session.ID)

			next(s)
		}
	}
}

// CatalogMiddleware injects the catalog into the context.
func CatalogMiddleware(cat *catalog.Catalog) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			s.Context().SetValue(ctxKeyCatalog, cat)
			next(s)
		}
	}
}

// LoggingMiddleware logs connections.
func LoggingMiddleware(logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			user := GetUserFromContext(s.Context())
			start := time.Now()
			logger.Info("connect", "remote", s.RemoteAddr(), "user", user.DisplayName(), "command", s.Command())

			next(s)

			logger.Info("disconnect", "remote", s.RemoteAddr(), "duration", time.Since(start).Round(time.Millisecond))
		}
	}
}

// RequestContext returns a context carrying the user and session of s, as
// expected by the catalog.
func RequestContext(s ssh.Session) context.Context {
	ctx := access.WithUser(s.Context(), GetUserFromContext(s.Context()))
	if session := GetSessionFromSSH(s); session != nil {
		ctx = access.WithSession(ctx, session.Info())
	}
	return ctx
}

// GetSessionFromSSH retrieves the session from the SSH session context.
func GetSessionFromSSH(s ssh.Session) *Session {
	if session, ok := s.Context().Value(ctxKeySession).(*Session); ok {
		return session
	}
	return nil
}

// GetCatalogFromSSH retrieves the catalog from the SSH session context.
func GetCatalogFromSSH(s ssh.Session) *catalog.Catalog {
	if cat, ok := s.Context().Value(ctxKeyCatalog).(*catalog.Catalog); ok {
		return cat
	}
	return nil
}

// GetSessionMgrFromSSH retrieves the session manager from the SSH session context.
func GetSessionMgrFromSSH(s ssh.Session) *SessionManager {
	if mgr, ok := s.Context().Value(ctxKeySessionMgr).(*SessionManager); ok {
		return mgr
	}
	return nil
}
