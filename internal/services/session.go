package services

import (
	"sync"
	"time"

	"bacbo-analyst-backend/internal/models"
)

// HistoryCapacity bounds the per-session outcome buffer. Scoring only reads
// the trailing ScoringWindow entries; the rest is kept for display.
const HistoryCapacity = 20

type ConversationState string

const (
	StateIdle            ConversationState = "idle"
	StateCollecting      ConversationState = "collecting"
	StateSignalPending   ConversationState = "signal_pending"
	StateAwaitingWinType ConversationState = "awaiting_win_type"
)

// Session is per-user in-memory working state. It is never persisted;
// losing it on restart resets in-progress analyses to idle.
type Session struct {
	UserID      int64
	State       ConversationState
	History     []models.OutcomeSymbol
	PendingSide models.OutcomeSymbol
	LastActive  time.Time

	mu sync.Mutex
}

func (s *Session) AppendOutcome(symbol models.OutcomeSymbol) {
	s.History = append(s.History, symbol)
	if len(s.History) > HistoryCapacity {
		s.History = s.History[1:]
	}
}

func (s *Session) ClearHistory() {
	s.History = s.History[:0]
}

// Snapshot copies the state and history for readers outside the event
// dispatch path.
func (s *Session) Snapshot() (ConversationState, []models.OutcomeSymbol) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State, append([]models.OutcomeSymbol(nil), s.History...)
}

// SessionStore owns all live sessions and the per-user locks that
// serialize event handling for a single user.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*Session),
	}
}

// Get returns the user's session, creating an idle one on first contact.
func (st *SessionStore) Get(userID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[userID]
	if !ok {
		session = &Session{
			UserID:     userID,
			State:      StateIdle,
			LastActive: time.Now(),
		}
		st.sessions[userID] = session
	}
	return session
}

// Reset returns the session to idle with an empty history. Idempotent.
func (st *SessionStore) Reset(userID int64) {
	session := st.Get(userID)
	session.mu.Lock()
	defer session.mu.Unlock()

	session.State = StateIdle
	session.History = nil
	session.PendingSide = ""
	session.LastActive = time.Now()
}

// Evict drops the session entirely. Idempotent; a concurrent reader keeps
// its reference and the next command revalidates from a fresh session.
func (st *SessionStore) Evict(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}

// EvictStale drops sessions idle for longer than maxIdle and reports how
// many were removed.
func (st *SessionStore) EvictStale(maxIdle time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	evicted := 0
	for userID, session := range st.sessions {
		if time.Since(session.LastActive) > maxIdle {
			delete(st.sessions, userID)
			evicted++
		}
	}
	return evicted
}

func (st *SessionStore) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
