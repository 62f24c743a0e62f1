// Package history records operator sessions and an audit trail of changes.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/johan-st/shopdash/internal/shop"
	"github.com/johan-st/shopdash/internal/store"
)

// Store manages the history database.
type Store struct {
	conn          *store.Connection
	nameGenerator *NameGenerator
}

// NewStore opens or creates the history database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := store.Connect(path, store.DefaultOpenOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{
		conn:          conn,
		nameGenerator: NewNameGenerator(),
	}

	if err := s.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_name TEXT NOT NULL DEFAULT '',
		public_key_fingerprint TEXT NOT NULL DEFAULT '',
		anonymous_name TEXT NOT NULL DEFAULT '',
		remote_addr TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		last_active_at TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user_name ON sessions(user_name);
	CREATE INDEX IF NOT EXISTS idx_sessions_is_active ON sessions(is_active);

	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL DEFAULT '',
		actor TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		resource TEXT NOT NULL DEFAULT '',
		record_id TEXT NOT NULL DEFAULT '',
		details TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_log_session_id ON audit_log(session_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_resource ON audit_log(resource);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log(created_at);
	`)
	return err
}

// Close closes the store.
func (s *Store) Close() error {
	return s.conn.Close()
}

// GenerateAnonymousName generates a new anonymous name.
func (s *Store) GenerateAnonymousName() string {
	return s.nameGenerator.Generate()
}

// CreateSession creates a new session record.
func (s *Store) CreateSession(ctx context.Context, session *Session) error {
	_, err := s.conn.NamedExec(ctx, `
		INSERT INTO sessions (id, user_name, public_key_fingerprint, anonymous_name, remote_addr, created_at, last_active_at, is_active)
		VALUES (:id, :user_name, :public_key_fingerprint, :anonymous_name, :remote_addr, :created_at, :last_active_at, :is_active)
	`, session)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// UpdateSessionActivity updates the last active time for a session.
func (s *Store) UpdateSessionActivity(ctx context.Context, sessionID string) error {
	_, err := s.conn.Exec(ctx, `UPDATE sessions SET last_active_at = ? WHERE id = ?`, shop.Now(), sessionID)
	return err
}

// EndSession marks a session as inactive.
func (s *Store) EndSession(ctx context.Context, sessionID string) error {
	_, err := s.conn.Exec(ctx, `UPDATE sessions SET is_active = 0, last_active_at = ? WHERE id = ?`, shop.Now(), sessionID)
	return err
}

const sessionColumns = "id, user_name, public_key_fingerprint, anonymous_name, remote_addr, created_at, last_active_at, is_active"

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	if err := s.conn.Get(ctx, &session, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", sessionID); err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return &session, nil
}

// ListSessions lists the most recently active sessions.
func (s *Store) ListSessions(ctx context.Context, activeOnly bool, limit int) ([]*Session, error) {
	query := "SELECT " + sessionColumns + " FROM sessions"
	var args []any
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY last_active_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	sessions := []*Session{}
	if err := s.conn.Select(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// RecordAudit records an audit log entry.
func (s *Store) RecordAudit(ctx context.Context, record *AuditRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = shop.Now()
	}
	res, err := s.conn.NamedExec(ctx, `
		INSERT INTO audit_log (session_id, actor, action, resource, record_id, details, created_at)
		VALUES (:session_id, :actor, :action, :resource, :record_id, :details, :created_at)
	`, record)
	if err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	record.ID, _ = res.LastInsertId()
	return nil
}

// Record is a convenience wrapper around RecordAudit that encodes details
// as JSON.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	var details string
	if len(entry.Details) > 0 {
		if data, err := json.Marshal(entry.Details); err == nil {
			details = string(data)
		}
	}
	return s.RecordAudit(ctx, &AuditRecord{
		SessionID: entry.SessionID,
		Actor:     entry.Actor,
		Action:    entry.Action,
		Resource:  entry.Resource,
		RecordID:  entry.RecordID,
		Details:   details,
	})
}

// AuditFilter narrows ListAuditLog. Zero fields match everything.
type AuditFilter struct {
	SessionID string
	Action    string
	Resource  string
	Since     time.Time
	Limit     int
}

// ListAuditLog lists audit log entries, newest first.
func (s *Store) ListAuditLog(ctx context.Context, f AuditFilter) ([]*AuditRecord, error) {
	var where []string
	var args []any

	if f.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, f.Action)
	}
	if f.Resource != "" {
		where = append(where, "resource = ?")
		args = append(args, f.Resource)
	}
	if !f.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, shop.Timestamp{Time: f.Since})
	}

	query := "SELECT id, session_id, actor, action, resource, record_id, details, created_at FROM audit_log"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	records := []*AuditRecord{}
	if err := s.conn.Select(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	return records, nil
}
