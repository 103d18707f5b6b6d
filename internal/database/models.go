package database

import (
	"database/sql"
	"time"
)

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ChatMessage struct {
	Id         int64
	SenderId   int
	ReceiverId int
	Content    string
	ImagePath  sql.NullString
	CreatedAt  time.Time
}

type Notification struct {
	Id        int64
	UserId    int
	Kind      string
	Content   string
	Read      bool
	CreatedAt time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type CreateChatMessageParams struct {
	SenderId   int
	ReceiverId int
	Content    string
	ImagePath  string
}

type CreateNotificationParams struct {
	UserId  int
	Kind    string
	Content string
}
