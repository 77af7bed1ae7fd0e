package models

type Plan string

const (
	PlanFree Plan = "free"
	PlanPaid Plan = "paid"
)

const MillisPerDay = int64(86_400_000)

// DefaultDemoBalance is the display-only balance a fresh account starts
// with, kept for parity with the original service.
const DefaultDemoBalance = 1000.0

type User struct {
	TelegramID int64  `json:"telegram_id" redis:"telegram_id"`
	Username   string `json:"username,omitempty" redis:"username"`

	Plan Plan `json:"plan" redis:"plan"`
	// PaidUntil is unix millis; 0 means no enforced expiry.
	PaidUntil int64 `json:"paid_until,omitempty" redis:"paid_until"`

	QuotaUsedToday int   `json:"quota_used_today" redis:"quota_used_today"`
	QuotaResetDay  int64 `json:"quota_reset_day" redis:"quota_reset_day"`

	DemoBalance float64 `json:"demo_balance" redis:"demo_balance"`

	CreatedAt int64 `json:"created_at" redis:"created_at"`
	UpdatedAt int64 `json:"updated_at" redis:"updated_at"`
}

// EpochDay converts unix millis to an absolute UTC day number.
func EpochDay(unixMillis int64) int64 {
	return unixMillis / MillisPerDay
}

func NewUser(telegramID int64, nowMillis int64) *User {
	return &User{
		TelegramID:     telegramID,
		Plan:           PlanFree,
		QuotaUsedToday: 0,
		QuotaResetDay:  EpochDay(nowMillis),
		DemoBalance:    DefaultDemoBalance,
		CreatedAt:      nowMillis,
		UpdatedAt:      nowMillis,
	}
}
