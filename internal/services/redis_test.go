package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bacbo-analyst-backend/internal/config"
	"bacbo-analyst-backend/internal/models"
	"bacbo-analyst-backend/internal/services"
)

func TestRedisService(t *testing.T) {
	cfg := &config.Config{
		RedisAddr: "localhost:6379",
		RedisPass: "",
		RedisDB:   0,
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer redisService.Close()

	ctx := context.Background()
	userID := int64(999999)

	if _, err := redisService.GetUser(ctx, userID); err != services.ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound for missing user, got %v", err)
	}

	user := models.NewUser(userID, time.Now().UnixMilli())
	if err := redisService.CreateUser(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	stored, err := redisService.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if stored.Plan != models.PlanFree {
		t.Errorf("Expected free plan, got %s", stored.Plan)
	}
	if stored.QuotaResetDay != user.QuotaResetDay {
		t.Errorf("Reset day mismatch: expected %d, got %d", user.QuotaResetDay, stored.QuotaResetDay)
	}

	stored.QuotaUsedToday = 1
	if err := redisService.UpdateUser(ctx, stored); err != nil {
		t.Errorf("Failed to update user: %v", err)
	}

	updated, err := redisService.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("Failed to get updated user: %v", err)
	}
	if updated.QuotaUsedToday != 1 {
		t.Errorf("Expected quota used 1, got %d", updated.QuotaUsedToday)
	}

	ref := fmt.Sprintf("test_pay_%d", time.Now().UnixNano())
	claimed, err := redisService.ClaimPaymentReference(ctx, ref)
	if err != nil {
		t.Fatalf("Failed to claim payment reference: %v", err)
	}
	if !claimed {
		t.Error("First claim should succeed")
	}

	claimed, err = redisService.ClaimPaymentReference(ctx, ref)
	if err != nil {
		t.Fatalf("Failed on duplicate claim: %v", err)
	}
	if claimed {
		t.Error("Duplicate claim should be rejected")
	}

	allowed, err := redisService.CheckRateLimit(ctx, userID, "event", 5, time.Minute)
	if err != nil {
		t.Errorf("Failed to check rate limit: %v", err)
	}
	if !allowed {
		t.Error("First event should be allowed")
	}

	redisService.DeleteUser(ctx, userID)
	redisService.ClearRateLimit(ctx, userID, "event")
}
