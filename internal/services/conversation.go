package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bacbo-analyst-backend/internal/models"
)

// ConversationStateMachine dispatches inbound events for one user at a
// time, consulting the entitlement service and signal engine and mutating
// the session store. It owns no data of its own.
type ConversationStateMachine struct {
	sessions     *SessionStore
	entitlements *EntitlementService
	engine       *SignalEngine
}

func NewConversationStateMachine(sessions *SessionStore, entitlements *EntitlementService, engine *SignalEngine) *ConversationStateMachine {
	return &ConversationStateMachine{
		sessions:     sessions,
		entitlements: entitlements,
		engine:       engine,
	}
}

// Handle processes one inbound event to completion and returns the
// notification intents the transport should deliver. The whole step runs
// inside the user's critical section so two concurrent outcome reports
// cannot both pass the quota check. A persistence failure surfaces as a
// generic failure notice with the session left unchanged.
func (sm *ConversationStateMachine) Handle(ctx context.Context, event models.Event) ([]models.Notification, error) {
	session := sm.sessions.Get(event.UserID)
	session.mu.Lock()
	defer session.mu.Unlock()

	session.LastActive = time.Now()

	switch event.Type {
	case models.EventStart:
		return sm.handleStart(ctx, session, event)
	case models.EventBeginAnalysis:
		return sm.handleBeginAnalysis(ctx, session, event)
	case models.EventStatusQuery:
		return sm.handleStatus(ctx, event)
	case models.EventOutcomeReport:
		return sm.handleOutcome(ctx, session, event)
	case models.EventButtonPress:
		return sm.handleButton(session, event), nil
	case models.EventPaymentConfirmed:
		return sm.handlePayment(ctx, event)
	default:
		return nil, nil
	}
}

func (sm *ConversationStateMachine) handleStart(ctx context.Context, session *Session, event models.Event) ([]models.Notification, error) {
	user, err := sm.entitlements.GetOrCreate(ctx, event.UserID)
	if err != nil {
		return failure(event.UserID), err
	}

	session.State = StateIdle
	session.History = nil
	session.PendingSide = ""

	text := fmt.Sprintf("🤖 Bac Bo Auto Analyst\n\nPlan: %s\n\nSend the begin-analysis command to start.", strings.ToUpper(string(user.Plan)))
	return notify(event.UserID, models.NoticeWelcome, text), nil
}

func (sm *ConversationStateMachine) handleBeginAnalysis(ctx context.Context, session *Session, event models.Event) ([]models.Notification, error) {
	if session.State != StateIdle {
		return nil, nil
	}

	user, err := sm.entitlements.GetOrCreate(ctx, event.UserID)
	if err != nil {
		return failure(event.UserID), err
	}

	allowed, err := sm.entitlements.CanUse(ctx, user)
	if err != nil {
		return failure(event.UserID), err
	}
	if !allowed {
		text := "⛔ Your plan allows 1 signal per day and it has been used.\n\nUpgrade for unlimited signals."
		if user.Plan == models.PlanPaid {
			text = "⛔ Your paid plan has expired. Renew to keep receiving signals."
		}
		return notify(event.UserID, models.NoticeQuotaExhausted, text), nil
	}

	session.ClearHistory()
	session.State = StateCollecting

	text := fmt.Sprintf("🎯 Analysis started. Report outcomes as P, B or T; I need %d rounds before scoring.", ScoringWindow)
	return notify(event.UserID, models.NoticeAnalysisStarted, text), nil
}

func (sm *ConversationStateMachine) handleOutcome(ctx context.Context, session *Session, event models.Event) ([]models.Notification, error) {
	if session.State != StateCollecting {
		return nil, nil
	}

	symbol, ok := models.ParseOutcome(event.Token)
	if !ok {
		return nil, nil
	}

	// Snapshot lets us restore the buffer untouched if the quota write
	// fails after a signal fires.
	before := append([]models.OutcomeSymbol(nil), session.History...)
	session.AppendOutcome(symbol)

	verdict := sm.engine.Evaluate(session.History)
	switch verdict.Kind {
	case models.VerdictInsufficientData:
		text := fmt.Sprintf("📊 %d/%d rounds collected.", len(session.History), ScoringWindow)
		return notify(event.UserID, models.NoticeProgress, text), nil

	case models.VerdictNoBet:
		return notify(event.UserID, models.NoticeNoBet, "🚫 No edge detected. Keep reporting outcomes."), nil

	case models.VerdictSide:
		user, err := sm.entitlements.GetOrCreate(ctx, event.UserID)
		if err == nil {
			err = sm.entitlements.Consume(ctx, user)
		}
		if err != nil {
			session.History = before
			return failure(event.UserID), err
		}

		session.State = StateSignalPending
		session.PendingSide = verdict.Side

		window := session.History
		if len(window) > ScoringWindow {
			window = window[len(window)-ScoringWindow:]
		}

		n := newNotification(event.UserID, models.NoticeOpportunity,
			fmt.Sprintf("🎯 SIGNAL: bet %s\n\nReport the result when the round settles.", verdict.Side.Label()))
		n.Side = verdict.Side
		n.History = append([]models.OutcomeSymbol(nil), window...)
		n.Buttons = []models.ButtonID{models.ButtonWin, models.ButtonLoss}
		return []models.Notification{n}, nil
	}

	return nil, nil
}

func (sm *ConversationStateMachine) handleButton(session *Session, event models.Event) []models.Notification {
	switch session.State {
	case StateSignalPending:
		switch event.Button {
		case models.ButtonWin:
			session.State = StateAwaitingWinType
			n := newNotification(event.UserID, models.NoticeWinTypeMenu, "🏆 How did it win?")
			n.Buttons = []models.ButtonID{models.ButtonWinNoExtra, models.ButtonWinExtra}
			return []models.Notification{n}
		case models.ButtonLoss:
			session.State = StateIdle
			session.PendingSide = ""
			return notify(event.UserID, models.NoticeLossConfirmed, "📉 Loss recorded. Start a new analysis when ready.")
		}

	case StateAwaitingWinType:
		switch event.Button {
		case models.ButtonWinNoExtra:
			session.State = StateIdle
			session.PendingSide = ""
			return notify(event.UserID, models.NoticeWinConfirmed, "✅ Win recorded (no extra round).")
		case models.ButtonWinExtra:
			session.State = StateIdle
			session.PendingSide = ""
			return notify(event.UserID, models.NoticeWinConfirmed, "✅ Win recorded (first extra round).")
		}
	}

	return nil
}

func (sm *ConversationStateMachine) handleStatus(ctx context.Context, event models.Event) ([]models.Notification, error) {
	user, err := sm.entitlements.GetOrCreate(ctx, event.UserID)
	if err != nil {
		return failure(event.UserID), err
	}

	// Evaluating entitlement here applies the lazy daily reset, so the
	// report never shows yesterday's consumption.
	if _, err := sm.entitlements.CanUse(ctx, user); err != nil {
		return failure(event.UserID), err
	}

	report := sm.entitlements.Status(user)
	text := fmt.Sprintf("📋 Plan: %s | signals today: %d/%d", strings.ToUpper(string(user.Plan)), report.QuotaUsedToday, report.QuotaLimit)
	if user.Plan == models.PlanPaid && user.PaidUntil > 0 {
		text = fmt.Sprintf("📋 Plan: PAID until %s", time.UnixMilli(user.PaidUntil).UTC().Format("2006-01-02"))
	}

	n := newNotification(event.UserID, models.NoticeStatusReport, text)
	n.Status = report
	return []models.Notification{n}, nil
}

func (sm *ConversationStateMachine) handlePayment(ctx context.Context, event models.Event) ([]models.Notification, error) {
	user, err := sm.entitlements.Upgrade(ctx, event.UserID, event.DurationDays)
	if err != nil {
		return failure(event.UserID), err
	}

	text := fmt.Sprintf("💎 Payment confirmed. Paid plan active until %s.", time.UnixMilli(user.PaidUntil).UTC().Format("2006-01-02"))
	return notify(event.UserID, models.NoticePlanUpgraded, text), nil
}

func newNotification(userID int64, kind models.NotificationKind, text string) models.Notification {
	return models.Notification{
		ID:     uuid.New().String(),
		UserID: userID,
		Kind:   kind,
		Text:   text,
	}
}

func notify(userID int64, kind models.NotificationKind, text string) []models.Notification {
	return []models.Notification{newNotification(userID, kind, text)}
}

func failure(userID int64) []models.Notification {
	return notify(userID, models.NoticeFailure, "⚠️ Something went wrong handling that. Please try again.")
}
