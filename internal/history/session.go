package history

import (
	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/shop"
)

// Session represents a user session.
type Session struct {
	ID                   string         `db:"id"`
	UserName             string         `db:"user_name"`              // Authenticated username or empty
	PublicKeyFingerprint string         `db:"public_key_fingerprint"` // SSH key fingerprint or empty
	AnonymousName        string         `db:"anonymous_name"`         // Generated name for anonymous users
	RemoteAddr           string         `db:"remote_addr"`
	CreatedAt            shop.Timestamp `db:"created_at"`
	LastActiveAt         shop.Timestamp `db:"last_active_at"`
	IsActive             bool           `db:"is_active"`
}

// AuditRecord represents an audit log entry.
type AuditRecord struct {
	ID        int64          `db:"id"`
	SessionID string         `db:"session_id"`
	Actor     string         `db:"actor"`
	Action    string         `db:"action"`
	Resource  string         `db:"resource"`
	RecordID  string         `db:"record_id"`
	Details   string         `db:"details"` // JSON with specifics
	CreatedAt shop.Timestamp `db:"created_at"`
}

// Entry is an audit event before it is stored.
type Entry struct {
	SessionID string
	Actor     string
	Action    string
	Resource  string
	RecordID  string
	Details   map[string]any
}

// NewSession creates a new session from user info.
func NewSession(id string, user *access.UserInfo, remoteAddr string) *Session {
	now := shop.Now()
	s := &Session{
		ID:           id,
		RemoteAddr:   remoteAddr,
		CreatedAt:    now,
		LastActiveAt: now,
		IsActive:     true,
	}

	if user != nil {
		if user.IsAnonymous {
			s.AnonymousName = user.AnonymousName
		} else {
			s.UserName = user.Name
			s.PublicKeyFingerprint = user.PublicKeyFP
		}
	}

	return s
}

// DisplayName returns the display name for the session.
func (s *Session) DisplayName() string {
	if s.UserName != "" {
		return s.UserName
	}
	if s.AnonymousName != "" {
		return s.AnonymousName
	}
	return "unknown"
}

// IsAuthenticated returns true if the session has an authenticated user.
func (s *Session) IsAuthenticated() bool {
	return s.UserName != ""
}

// Audit actions.
const (
	ActionCreate         = "create"
	ActionUpdate         = "update"
	ActionDelete         = "delete"
	ActionActivate       = "activate"
	ActionDeactivate     = "deactivate"
	ActionDeactivateAll  = "deactivate_all"
	ActionExport         = "export"
	ActionSettingsUpdate = "settings_update"
)
