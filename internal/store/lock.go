package store

import (
	"fmt"
	"sync"
	"time"
)

// LockError reports a record being edited by someone else.
type LockError struct {
	Record string
	HeldBy string
	Since  time.Time
}

func (e *LockError) Error() string {
	return fmt.Sprintf("%s is being edited by %s (since %s)",
		e.Record, e.HeldBy, e.Since.Format(time.Kitchen))
}

// LockInfo describes a held lock.
type LockInfo struct {
	HeldBy    string
	SessionID string
	Since     time.Time
}

// LockManager tracks which session is editing which record, so two
// operators do not overwrite each other's changes.
type LockManager struct {
	locks map[string]*LockInfo
	mu    sync.RWMutex
}

func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]*LockInfo)}
}

// RecordKey names a record for locking.
func RecordKey(resource, id string) string {
	return resource + "/" + id
}

// TryLock takes the lock on key. The holding session may take it again.
func (lm *LockManager) TryLock(key, holder, sessionID string) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if info, ok := lm.locks[key]; ok && info.SessionID != sessionID {
		return &LockError{Record: key, HeldBy: info.HeldBy, Since: info.Since}
	}
	lm.locks[key] = &LockInfo{HeldBy: holder, SessionID: sessionID, Since: time.Now()}
	return nil
}

// Unlock releases key if sessionID holds it.
func (lm *LockManager) Unlock(key, sessionID string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if info, ok := lm.locks[key]; ok && info.SessionID == sessionID {
		delete(lm.locks, key)
	}
}

// Holder returns the lock on key, if any.
func (lm *LockManager) Holder(key string) (LockInfo, bool) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	if info, ok := lm.locks[key]; ok {
		return *info, true
	}
	return LockInfo{}, false
}

// ReleaseAllForSession drops every lock of a session, e.g. on disconnect.
func (lm *LockManager) ReleaseAllForSession(sessionID string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	for key, info := range lm.locks {
		if info.SessionID == sessionID {
			delete(lm.locks, key)
		}
	}
}

// List returns a copy of all held locks.
func (lm *LockManager) List() map[string]LockInfo {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	out := make(map[string]LockInfo, len(lm.locks))
	for k, v := range lm.locks {
		out[k] = *v
	}
	return out
}
