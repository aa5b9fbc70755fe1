package models

import "time"

// ChatSession ist eine gespeicherte Assistenten-Konversation eines Users.
type ChatSession struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"not null;default:'New Chat'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName gibt explizit den Tabellennamen an.
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage ist eine einzelne Nachricht innerhalb einer ChatSession.
// Das Löschen der Session entfernt auch ihre Nachrichten.
type ChatMessage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SessionID   uint      `json:"session_id" gorm:"index;not null"`
	Role        string    `json:"role" gorm:"not null"` // "user" oder "assistant"
	Content     string    `json:"content" gorm:"type:text"`
	SourcesUsed *int      `json:"sources_used,omitempty"`
	CreatedAt   time.Time `json:"timestamp"`
}

// TableName gibt explizit den Tabellennamen an.
func (ChatMessage) TableName() string {
	return "chat_messages"
}
