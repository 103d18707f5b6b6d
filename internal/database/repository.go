package database

import (
	"context"
	"time"
)

type Repository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	CreateChatMessage(params CreateChatMessageParams) (ChatMessage, error)
	GetChatMessage(ctx context.Context, id int64) (ChatMessage, error)
	DeleteChatMessage(ctx context.Context, id int64) (bool, error)
	GetConversation(accountId, friendId, limit int) ([]ChatMessage, error)
	CreateNotification(params CreateNotificationParams) (Notification, error)
	ListNotifications(accountId, limit int) ([]Notification, error)
	MarkNotificationsRead(accountId int) error
	UnreadNotificationCount(ctx context.Context, accountId int) (int, error)
	DeleteOldAds(ctx context.Context, olderThan time.Duration) (int64, error)
}
