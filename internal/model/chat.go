package model

import "time"

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatSession struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:100;uniqueIndex;not null" json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage is immutable once stored. Insertion order is conversation order.
type ChatMessage struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:100;not null;index" json:"session_id"`
	Role      string    `gorm:"size:10;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
