package services

import (
	"context"
	"fmt"
	"time"

	"bacbo-analyst-backend/internal/models"
)

// FreeDailyQuota is how many signals a free-plan user may consume per
// UTC epoch day.
const FreeDailyQuota = 1

// EntitlementService owns the consumption fields of the persisted plan
// record and is their sole writer. Callers serialize per user.
type EntitlementService struct {
	store UserStore
	now   func() time.Time
}

func NewEntitlementService(store UserStore) *EntitlementService {
	return NewEntitlementServiceWithClock(store, time.Now)
}

// NewEntitlementServiceWithClock injects the clock; tests use it to walk
// records across epoch-day boundaries.
func NewEntitlementServiceWithClock(store UserStore, now func() time.Time) *EntitlementService {
	return &EntitlementService{
		store: store,
		now:   now,
	}
}

// GetOrCreate loads the user's plan record, creating a free-plan record
// with today's reset day on first contact.
func (es *EntitlementService) GetOrCreate(ctx context.Context, userID int64) (*models.User, error) {
	user, err := es.store.GetUser(ctx, userID)
	if err == nil {
		return user, nil
	}
	if err != ErrUserNotFound {
		return nil, fmt.Errorf("failed to load user %d: %v", userID, err)
	}

	user = models.NewUser(userID, es.now().UnixMilli())
	if err := es.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user %d: %v", userID, err)
	}
	return user, nil
}

// CanUse reports whether the user may consume a signal right now. For the
// free plan the daily quota is lazily reset the first time the record is
// evaluated on a new epoch day; the reset is persisted immediately.
func (es *EntitlementService) CanUse(ctx context.Context, user *models.User) (bool, error) {
	if user.Plan == models.PlanPaid {
		return user.PaidUntil == 0 || es.now().UnixMilli() < user.PaidUntil, nil
	}

	today := models.EpochDay(es.now().UnixMilli())
	if user.QuotaResetDay != today {
		user.QuotaUsedToday = 0
		user.QuotaResetDay = today
		if err := es.store.UpdateUser(ctx, user); err != nil {
			return false, fmt.Errorf("failed to reset quota for user %d: %v", user.TelegramID, err)
		}
	}

	return user.QuotaUsedToday < FreeDailyQuota, nil
}

// Consume records one consumed signal. The state machine invokes this
// exactly once per detected signal, inside the user's critical section.
func (es *EntitlementService) Consume(ctx context.Context, user *models.User) error {
	user.QuotaUsedToday++
	if err := es.store.UpdateUser(ctx, user); err != nil {
		user.QuotaUsedToday--
		return fmt.Errorf("failed to consume quota for user %d: %v", user.TelegramID, err)
	}
	return nil
}

// Upgrade moves the user to the paid plan and extends the expiry by the
// given number of days, from the current expiry when it is still in the
// future. Duplicate deliveries of the same payment reference must be
// filtered by the caller; a second call here extends again.
func (es *EntitlementService) Upgrade(ctx context.Context, userID int64, days int) (*models.User, error) {
	user, err := es.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	nowMillis := es.now().UnixMilli()
	base := nowMillis
	if user.Plan == models.PlanPaid && user.PaidUntil > nowMillis {
		base = user.PaidUntil
	}

	user.Plan = models.PlanPaid
	user.PaidUntil = base + int64(days)*models.MillisPerDay
	if err := es.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upgrade user %d: %v", userID, err)
	}
	return user, nil
}

// Status summarizes plan and quota for a status report.
func (es *EntitlementService) Status(user *models.User) *models.StatusReport {
	return &models.StatusReport{
		Plan:           user.Plan,
		QuotaUsedToday: user.QuotaUsedToday,
		QuotaLimit:     FreeDailyQuota,
		PaidUntil:      user.PaidUntil,
		DemoBalance:    user.DemoBalance,
	}
}
