package services_test

import (
	"testing"
	"time"

	"bacbo-analyst-backend/internal/models"
	"bacbo-analyst-backend/internal/services"
)

func TestSessionHistoryFIFO(t *testing.T) {
	session := &services.Session{UserID: 1, State: services.StateCollecting}

	for i := 0; i < services.HistoryCapacity; i++ {
		session.AppendOutcome(models.OutcomePlayer)
	}
	if len(session.History) != services.HistoryCapacity {
		t.Fatalf("expected %d entries, got %d", services.HistoryCapacity, len(session.History))
	}

	session.AppendOutcome(models.OutcomeBanker)
	if len(session.History) != services.HistoryCapacity {
		t.Errorf("capacity exceeded: %d entries", len(session.History))
	}
	if session.History[len(session.History)-1] != models.OutcomeBanker {
		t.Error("newest entry should be the appended banker outcome")
	}

	// Oldest entry was dropped; everything shifted by one.
	session.AppendOutcome(models.OutcomeTie)
	if session.History[len(session.History)-2] != models.OutcomeBanker {
		t.Error("FIFO order lost after eviction")
	}
}

func TestSessionStoreLifecycle(t *testing.T) {
	store := services.NewSessionStore()

	session := store.Get(55)
	if session.State != services.StateIdle {
		t.Errorf("new session should be idle, got %s", session.State)
	}

	if again := store.Get(55); again != session {
		t.Error("Get should return the same session for the same user")
	}

	session.State = services.StateCollecting
	session.AppendOutcome(models.OutcomePlayer)

	store.Reset(55)
	if session.State != services.StateIdle || len(session.History) != 0 {
		t.Error("Reset should return the session to idle with empty history")
	}

	store.Evict(55)
	if store.Count() != 0 {
		t.Errorf("expected empty store after evict, got %d sessions", store.Count())
	}

	// Evicting an absent session is a no-op.
	store.Evict(55)
}

func TestEvictStale(t *testing.T) {
	store := services.NewSessionStore()

	stale := store.Get(1)
	stale.LastActive = time.Now().Add(-2 * time.Hour)
	fresh := store.Get(2)
	fresh.LastActive = time.Now()

	if evicted := store.EvictStale(time.Hour); evicted != 1 {
		t.Errorf("expected 1 eviction, got %d", evicted)
	}
	if store.Count() != 1 {
		t.Errorf("expected 1 remaining session, got %d", store.Count())
	}
	if got := store.Get(2); got != fresh {
		t.Error("fresh session should survive eviction")
	}
}
