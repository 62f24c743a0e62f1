package server

import (
	"context"
	"testing"

	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/store"
	"github.com/johan-st/shopdash/internal/testutil"
)

func TestSessionManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	h := testutil.History(t)
	locks := store.NewLockManager()
	sm := NewSessionManager(h, locks, testutil.Logger())

	user := &access.UserInfo{Name: "alice"}
	session := sm.CreateSession(ctx, user, "127.0.0.1:2222")
	if sm.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", sm.Count())
	}
	if got := sm.GetSession(session.ID); got != session {
		t.Errorf("GetSession() = %v, want %v", got, session)
	}
	if info := session.Info(); info.ID != session.ID || info.User != user {
		t.Errorf("Info() = %+v", info)
	}

	key := store.RecordKey("products", "p1")
	if err := locks.TryLock(key, "alice", session.ID); err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	sm.UpdateActivity(ctx, session.ID)

	sm.EndSession(ctx, session.ID)
	if sm.Count() != 0 {
		t.Errorf("Count() after end = %d, want 0", sm.Count())
	}
	if _, held := locks.Holder(key); held {
		t.Error("lock should be released when the session ends")
	}

	stored, err := h.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if stored.IsActive || stored.UserName != "alice" {
		t.Errorf("stored session = %+v", stored)
	}
}

func TestSessionManager_WithoutHistory(t *testing.T) {
	sm := NewSessionManager(nil, nil, testutil.Logger())
	s := sm.CreateSession(context.Background(), &access.UserInfo{IsAnonymous: true, AnonymousName: "x"}, "addr")
	sm.EndSession(context.Background(), s.ID)
	if len(sm.ListActiveSessions()) != 0 {
		t.Error("expected no sessions")
	}
}
