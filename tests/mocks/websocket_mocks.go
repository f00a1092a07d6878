package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/folio-backend/internal/models"
)

// MockNotifier implements services.Notifier and records every notification
type MockNotifier struct {
	mock.Mock
	mu            sync.Mutex
	Notifications []models.Message
}

// NewMockNotifier creates a new MockNotifier instance
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		Notifications: make([]models.Message, 0),
	}
}

// NotifyNewMessage records the message and returns the configured error
func (m *MockNotifier) NotifyNewMessage(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	m.mu.Lock()
	m.Notifications = append(m.Notifications, *message)
	m.mu.Unlock()
	return args.Error(0)
}

// GetNotifications returns all recorded notifications
func (m *MockNotifier) GetNotifications() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Message(nil), m.Notifications...)
}

// ClearNotifications clears all recorded notifications
func (m *MockNotifier) ClearNotifications() {
	m.mu.Lock()
	m.Notifications = make([]models.Message, 0)
	m.mu.Unlock()
}
