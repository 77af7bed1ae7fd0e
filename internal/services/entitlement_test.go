package services_test

import (
	"context"
	"testing"
	"time"

	"bacbo-analyst-backend/internal/models"
	"bacbo-analyst-backend/internal/services"
)

// fakeClock lets tests walk the entitlement service across day boundaries.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEntitlements() (*services.EntitlementService, *services.MemoryUserStore, *fakeClock) {
	store := services.NewMemoryUserStore()
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}

	es := services.NewEntitlementServiceWithClock(store, clock.Now)
	return es, store, clock
}

func TestGetOrCreateDefaults(t *testing.T) {
	es, _, clock := newTestEntitlements()
	ctx := context.Background()

	user, err := es.GetOrCreate(ctx, 1001)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if user.Plan != models.PlanFree {
		t.Errorf("expected free plan, got %s", user.Plan)
	}
	if user.QuotaUsedToday != 0 {
		t.Errorf("expected zero quota used, got %d", user.QuotaUsedToday)
	}
	if want := models.EpochDay(clock.Now().UnixMilli()); user.QuotaResetDay != want {
		t.Errorf("expected reset day %d, got %d", want, user.QuotaResetDay)
	}
	if user.DemoBalance != models.DefaultDemoBalance {
		t.Errorf("expected demo balance %v, got %v", models.DefaultDemoBalance, user.DemoBalance)
	}

	again, err := es.GetOrCreate(ctx, 1001)
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if again.CreatedAt != user.CreatedAt {
		t.Error("second GetOrCreate should load the existing record, not recreate it")
	}
}

func TestFreeQuotaOnePerDay(t *testing.T) {
	es, _, clock := newTestEntitlements()
	ctx := context.Background()

	user, err := es.GetOrCreate(ctx, 42)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	allowed, err := es.CanUse(ctx, user)
	if err != nil {
		t.Fatalf("CanUse failed: %v", err)
	}
	if !allowed {
		t.Fatal("fresh free user should be allowed")
	}

	if err := es.Consume(ctx, user); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	allowed, err = es.CanUse(ctx, user)
	if err != nil {
		t.Fatalf("CanUse failed: %v", err)
	}
	if allowed {
		t.Error("free user should be blocked after one consumption on the same day")
	}

	// Crossing the epoch-day boundary resets the quota lazily.
	clock.Advance(24 * time.Hour)

	allowed, err = es.CanUse(ctx, user)
	if err != nil {
		t.Fatalf("CanUse failed: %v", err)
	}
	if !allowed {
		t.Error("quota should reset on a new epoch day")
	}
	if user.QuotaUsedToday != 0 {
		t.Errorf("expected quota reset to 0, got %d", user.QuotaUsedToday)
	}
	if want := models.EpochDay(clock.Now().UnixMilli()); user.QuotaResetDay != want {
		t.Errorf("expected reset day %d, got %d", want, user.QuotaResetDay)
	}
}

func TestQuotaResetPersisted(t *testing.T) {
	es, store, clock := newTestEntitlements()
	ctx := context.Background()

	user, _ := es.GetOrCreate(ctx, 42)
	_ = es.Consume(ctx, user)

	clock.Advance(24 * time.Hour)
	if _, err := es.CanUse(ctx, user); err != nil {
		t.Fatalf("CanUse failed: %v", err)
	}

	stored, err := store.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if stored.QuotaUsedToday != 0 {
		t.Errorf("reset should be persisted, stored quota is %d", stored.QuotaUsedToday)
	}
}

func TestPaidPlanIgnoresQuota(t *testing.T) {
	es, _, clock := newTestEntitlements()
	ctx := context.Background()

	user, _ := es.GetOrCreate(ctx, 7)
	user.Plan = models.PlanPaid
	user.PaidUntil = clock.Now().Add(48 * time.Hour).UnixMilli()
	user.QuotaUsedToday = 99

	allowed, err := es.CanUse(ctx, user)
	if err != nil {
		t.Fatalf("CanUse failed: %v", err)
	}
	if !allowed {
		t.Error("paid user with future expiry should always be allowed")
	}
}

func TestPaidPlanNoExpiry(t *testing.T) {
	es, _, _ := newTestEntitlements()
	ctx := context.Background()

	user, _ := es.GetOrCreate(ctx, 7)
	user.Plan = models.PlanPaid
	user.PaidUntil = 0

	allowed, err := es.CanUse(ctx, user)
	if err != nil {
		t.Fatalf("CanUse failed: %v", err)
	}
	if !allowed {
		t.Error("paid user without an expiry should be allowed")
	}
}

func TestPaidPlanExpired(t *testing.T) {
	es, _, clock := newTestEntitlements()
	ctx := context.Background()

	user, _ := es.GetOrCreate(ctx, 7)
	user.Plan = models.PlanPaid
	user.PaidUntil = clock.Now().Add(-time.Hour).UnixMilli()

	allowed, err := es.CanUse(ctx, user)
	if err != nil {
		t.Fatalf("CanUse failed: %v", err)
	}
	if allowed {
		t.Error("expired paid plan should not be allowed")
	}
}

func TestUpgradeExtendsFromFutureExpiry(t *testing.T) {
	es, _, clock := newTestEntitlements()
	ctx := context.Background()

	user, err := es.Upgrade(ctx, 9, 30)
	if err != nil {
		t.Fatalf("Upgrade failed: %v", err)
	}
	if user.Plan != models.PlanPaid {
		t.Errorf("expected paid plan, got %s", user.Plan)
	}

	firstExpiry := clock.Now().UnixMilli() + 30*models.MillisPerDay
	if user.PaidUntil != firstExpiry {
		t.Errorf("expected expiry %d, got %d", firstExpiry, user.PaidUntil)
	}

	// A second confirmation while still active stacks on the current
	// expiry, not on now.
	user, err = es.Upgrade(ctx, 9, 30)
	if err != nil {
		t.Fatalf("second Upgrade failed: %v", err)
	}
	if want := firstExpiry + 30*models.MillisPerDay; user.PaidUntil != want {
		t.Errorf("expected stacked expiry %d, got %d", want, user.PaidUntil)
	}
}

func TestUpgradeAfterExpiryExtendsFromNow(t *testing.T) {
	es, _, clock := newTestEntitlements()
	ctx := context.Background()

	if _, err := es.Upgrade(ctx, 9, 1); err != nil {
		t.Fatalf("Upgrade failed: %v", err)
	}

	clock.Advance(10 * 24 * time.Hour)

	user, err := es.Upgrade(ctx, 9, 30)
	if err != nil {
		t.Fatalf("Upgrade failed: %v", err)
	}
	if want := clock.Now().UnixMilli() + 30*models.MillisPerDay; user.PaidUntil != want {
		t.Errorf("expected expiry %d from now, got %d", want, user.PaidUntil)
	}
}
