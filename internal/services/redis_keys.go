package services

import "time"

const (
	KeyUser       = "user:%d:record"
	KeyPaymentRef = "payment:ref:%s"
	KeyRateLimit  = "ratelimit:%d:%s"

	// Payment references are kept long enough to absorb late webhook
	// redeliveries from the gateway.
	TTLPaymentRef = 90 * 24 * time.Hour

	DefaultRateLimitEvents = 60 // inbound events per user per minute
)
