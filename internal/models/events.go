package models

type EventType string

const (
	EventStart            EventType = "start"
	EventBeginAnalysis    EventType = "begin_analysis"
	EventStatusQuery      EventType = "status"
	EventOutcomeReport    EventType = "outcome"
	EventButtonPress      EventType = "button"
	EventPaymentConfirmed EventType = "payment_confirmed"
)

type ButtonID string

const (
	ButtonWin        ButtonID = "WIN"
	ButtonLoss       ButtonID = "LOSS"
	ButtonWinNoExtra ButtonID = "WIN_NO_EXTRA"
	ButtonWinExtra   ButtonID = "WIN_EXTRA"
)

// Event is a single inbound event delivered by the transport layer.
// Token is set for outcome reports, Button for button presses, and
// DurationDays/PaymentRef for payment confirmations.
type Event struct {
	Type   EventType `json:"type" binding:"required"`
	UserID int64     `json:"user_id" binding:"required"`

	Token        string   `json:"token,omitempty"`
	Button       ButtonID `json:"button,omitempty"`
	DurationDays int      `json:"duration_days,omitempty"`
	PaymentRef   string   `json:"payment_ref,omitempty"`
}
