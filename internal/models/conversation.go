package models

import "time"

// Conversation groups the messages of one assistant session.
type Conversation struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	AccountID string    `gorm:"index" json:"account_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single user or assistant turn. When the reply resolved to an
// analytical card, Intent holds the tag and Payload the rendered JSON.
type Message struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"index" json:"conversation_id"`
	Role           string    `json:"role"` // "user" or "assistant"
	Text           string    `json:"text"`
	Intent         string    `json:"intent,omitempty"`
	Payload        string    `json:"payload,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
