package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bacbo-analyst-backend/internal/config"
	"bacbo-analyst-backend/internal/models"
)

// RedisService is the durable half of the system: plan records, payment
// reference dedupe and per-user rate limiting. Session state never goes
// through here.
type RedisService struct {
	client *redis.Client
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{client: client}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	key := fmt.Sprintf(KeyUser, userID)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %v", userID, err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user %d: %v", userID, err)
	}

	return &user, nil
}

func (s *RedisService) CreateUser(ctx context.Context, user *models.User) error {
	return s.saveUser(ctx, user)
}

func (s *RedisService) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UnixMilli()
	return s.saveUser(ctx, user)
}

func (s *RedisService) saveUser(ctx context.Context, user *models.User) error {
	key := fmt.Sprintf(KeyUser, user.TelegramID)

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user %d: %v", user.TelegramID, err)
	}

	return s.client.Set(ctx, key, data, 0).Err()
}

func (s *RedisService) DeleteUser(ctx context.Context, userID int64) error {
	key := fmt.Sprintf(KeyUser, userID)
	return s.client.Del(ctx, key).Err()
}

// ClaimPaymentReference marks a gateway payment reference as processed.
// SETNX makes the first delivery win; redeliveries see false and are
// dropped before they reach the entitlement service.
func (s *RedisService) ClaimPaymentReference(ctx context.Context, ref string) (bool, error) {
	key := fmt.Sprintf(KeyPaymentRef, ref)

	claimed, err := s.client.SetNX(ctx, key, time.Now().UnixMilli(), TTLPaymentRef).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim payment reference %s: %v", ref, err)
	}
	return claimed, nil
}

func (s *RedisService) CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, userID, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

func (s *RedisService) ClearRateLimit(ctx context.Context, userID int64, action string) error {
	key := fmt.Sprintf(KeyRateLimit, userID, action)
	return s.client.Del(ctx, key).Err()
}
