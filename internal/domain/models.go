// Package domain contains the core business entities and value objects.
package domain

import "time"

// Sender identifies which side of a conversation produced a message.
type Sender string

const (
	// SenderUser marks a message typed by the account owner.
	SenderUser Sender = "user"

	// SenderAI marks a message produced by the configured AI provider.
	SenderAI Sender = "ai"
)

// User is an account that owns conversations and spends credits.
// The password hash is managed by the auth layer; the chat pipeline
// only ever reads and debits Credits.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Credits      int       `json:"credits"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Conversation is a titled thread of messages owned by a single user.
// LastMessage and LastMessageTime are denormalized from the most recent
// AI turn so the conversation list can render without touching messages.
type Conversation struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Title           string    `json:"title"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Message is one turn half inside a conversation. Messages are immutable
// once written; they are only removed when the parent conversation is
// deleted.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Sender         Sender    `json:"sender"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

// Notification is a short owner-scoped notice shown in the client's
// notification panel.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
