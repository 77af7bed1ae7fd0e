package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"bacbo-analyst-backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore is the persistence collaborator for plan records. Writes go
// through full-record saves; callers serialize per user, so read-modify-
// write is safe.
type UserStore interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
}

// PaymentLedger deduplicates payment confirmations by external reference.
// Claiming a reference a second time returns false.
type PaymentLedger interface {
	ClaimPaymentReference(ctx context.Context, ref string) (bool, error)
}

// MemoryUserStore keeps records in process memory. Used when no Redis
// address is configured and by the test suite.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	claims map[string]bool
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:  make(map[int64]models.User),
		claims: make(map[string]bool),
	}
}

func (m *MemoryUserStore) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := user
	return &copied, nil
}

func (m *MemoryUserStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.TelegramID] = *user
	return nil
}

func (m *MemoryUserStore) UpdateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.TelegramID]; !ok {
		return ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UnixMilli()
	m.users[user.TelegramID] = *user
	return nil
}

func (m *MemoryUserStore) ClaimPaymentReference(ctx context.Context, ref string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claims[ref] {
		return false, nil
	}
	m.claims[ref] = true
	return true, nil
}
