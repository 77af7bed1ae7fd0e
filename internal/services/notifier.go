package services

import (
	"context"
	"time"

	"bacbo-analyst-backend/internal/models"
)

// Notifier delivers outbound notification intents to whatever transport
// the user is connected through. Delivery is best effort; a disconnected
// user simply misses the push.
type Notifier interface {
	Deliver(notification models.Notification)
}

// RateLimiter throttles inbound events per user and action.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error)
}
