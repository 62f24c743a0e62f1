package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/history"
	"github.com/johan-st/shopdash/internal/store"
)

// Session represents an active SSH session.
type Session struct {
	ID           string
	User         *access.UserInfo
	RemoteAddr   string
	StartTime    time.Time
	LastActivity time.Time
	mu           sync.RWMutex
}

// NewSession creates a new session.
func NewSession(user *access.UserInfo, remoteAddr string) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.NewString(),
		User:         user,
		RemoteAddr:   remoteAddr,
		StartTime:    now,
		LastActivity: now,
	}
}

// Info returns the access view of the session.
func (s *Session) Info() *access.SessionInfo {
	return &access.SessionInfo{ID: s.ID, User: s.User, RemoteAddr: s.RemoteAddr}
}

// Touch updates the last activity time.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = time.Now()
}

// Duration returns how long the session has been active.
func (s *Session) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.StartTime)
}

// IdleTime returns how long since the last activity.
func (s *Session) IdleTime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.LastActivity)
}

// SessionManager tracks live sessions, mirrors them into history and
// releases their record locks when they end.
type SessionManager struct {
	sessions map[string]*Session
	history  *history.Store
	locks    *store.LockManager
	logger   *log.Logger
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager. history and locks may be nil.
func NewSessionManager(h *history.Store, locks *store.LockManager, logger *log.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		history:  h,
		locks:    locks,
		logger:   logger,
	}
}

// CreateSession creates and registers a new session.
func (sm *SessionManager) CreateSession(ctx context.Context, user *access.UserInfo, remoteAddr string) *Session {
	session := NewSession(user, remoteAddr)

	sm.mu.Lock()
	sm.sessions[session.ID] = session
	sm.mu.Unlock()

	if sm.history != nil {
		if err := sm.history.CreateSession(ctx, history.NewSession(session.ID, user, remoteAddr)); err != nil {
			sm.logger.Error("failed to record session", "id", session.ID, "err", err)
		}
	}
	return session
}

// GetSession returns a session by ID.
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// EndSession ends a session.
func (sm *SessionManager) EndSession(ctx context.Context, id string) {
	sm.mu.Lock()
	delete(sm.sessions, id)
	sm.mu.Unlock()

	if sm.locks != nil {
		sm.locks.ReleaseAllForSession(id)
	}
	if sm.history != nil {
		if err := sm.history.EndSession(ctx, id); err != nil {
			sm.logger.Error("failed to end session", "id", id, "err", err)
		}
	}
}

// ListActiveSessions returns all active sessions.
func (sm *SessionManager) ListActiveSessions() []*Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sessions := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// UpdateActivity updates the activity time for a session.
func (sm *SessionManager) UpdateActivity(ctx context.Context, id string) {
	sm.mu.RLock()
	session := sm.sessions[id]
	sm.mu.RUnlock()

	if session == nil {
		return
	}
	session.Touch()
	if sm.history != nil {
		if err := sm.history.UpdateSessionActivity(ctx, id); err != nil {
			sm.logger.Debug("failed to touch session", "id", id, "err", err)
		}
	}
}
