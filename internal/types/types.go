package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	IsAdmin      bool      `json:"is_admin,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type ChatMessage struct {
	Id         int64     `json:"id"`
	SenderId   int       `json:"sender_id"`
	ReceiverId int       `json:"receiver_id"`
	Content    string    `json:"content"`
	ImagePath  string    `json:"image_path,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

type Notification struct {
	Id        int64     `json:"id"`
	UserId    int       `json:"user_id"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
