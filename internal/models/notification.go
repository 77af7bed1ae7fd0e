package models

type NotificationKind string

const (
	NoticeWelcome         NotificationKind = "welcome"
	NoticeQuotaExhausted  NotificationKind = "quota_exhausted"
	NoticeAnalysisStarted NotificationKind = "analysis_started"
	NoticeProgress        NotificationKind = "progress"
	NoticeNoBet           NotificationKind = "no_bet"
	NoticeOpportunity     NotificationKind = "opportunity"
	NoticeWinTypeMenu     NotificationKind = "win_type_menu"
	NoticeWinConfirmed    NotificationKind = "win_confirmed"
	NoticeLossConfirmed   NotificationKind = "loss_confirmed"
	NoticeStatusReport    NotificationKind = "status_report"
	NoticePlanUpgraded    NotificationKind = "plan_upgraded"
	NoticeFailure         NotificationKind = "failure"
)

// Notification is an outbound intent for the transport layer to deliver.
// The core never talks to the chat transport directly.
type Notification struct {
	ID     string           `json:"id"`
	UserID int64            `json:"user_id"`
	Kind   NotificationKind `json:"kind"`
	Text   string           `json:"text"`

	// Side and History are set on opportunity notices.
	Side    OutcomeSymbol   `json:"side,omitempty"`
	History []OutcomeSymbol `json:"history,omitempty"`

	// Buttons the transport should render as reply controls.
	Buttons []ButtonID `json:"buttons,omitempty"`

	// Status is set on status reports.
	Status *StatusReport `json:"status,omitempty"`
}

type StatusReport struct {
	Plan           Plan    `json:"plan"`
	QuotaUsedToday int     `json:"quota_used_today"`
	QuotaLimit     int     `json:"quota_limit"`
	PaidUntil      int64   `json:"paid_until,omitempty"`
	DemoBalance    float64 `json:"demo_balance"`
}
