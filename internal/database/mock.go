package database

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) CreateChatMessage(params CreateChatMessageParams) (ChatMessage, error) {
	args := m.Called(params)
	return args.Get(0).(ChatMessage), args.Error(1)
}

func (m *MockRepository) GetChatMessage(ctx context.Context, id int64) (ChatMessage, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ChatMessage), args.Error(1)
}

func (m *MockRepository) DeleteChatMessage(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) GetConversation(accountId, friendId, limit int) ([]ChatMessage, error) {
	args := m.Called(accountId, friendId, limit)
	return args.Get(0).([]ChatMessage), args.Error(1)
}

func (m *MockRepository) CreateNotification(params CreateNotificationParams) (Notification, error) {
	args := m.Called(params)
	return args.Get(0).(Notification), args.Error(1)
}

func (m *MockRepository) ListNotifications(accountId, limit int) ([]Notification, error) {
	args := m.Called(accountId, limit)
	return args.Get(0).([]Notification), args.Error(1)
}

func (m *MockRepository) MarkNotificationsRead(accountId int) error {
	args := m.Called(accountId)
	return args.Error(0)
}

func (m *MockRepository) UnreadNotificationCount(ctx context.Context, accountId int) (int, error) {
	args := m.Called(ctx, accountId)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) DeleteOldAds(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}
