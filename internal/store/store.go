// Package store provides owner-scoped persistence for users, conversations,
// messages, and notifications. Two implementations exist: sqlite for
// production and an in-memory store for tests.
package store

import (
	"context"
	"time"

	"github.com/orbitchat/orbit-chat/internal/domain"
)

// UserStore persists accounts and their credit balances.
type UserStore interface {
	// CreateUser inserts a new user. The caller supplies ID and timestamps.
	CreateUser(ctx context.Context, u *domain.User) error

	// UserByID returns the user with the given id, or a NotFoundError.
	UserByID(ctx context.Context, id string) (*domain.User, error)

	// UserByUsername returns the user with the given username, or a NotFoundError.
	UserByUsername(ctx context.Context, username string) (*domain.User, error)

	// SpendCredit atomically decrements the user's balance by one with a
	// floor at zero, and returns the resulting balance. A balance already
	// at zero is left unchanged. Returns a NotFoundError for unknown users.
	SpendCredit(ctx context.Context, userID string) (int, error)
}

// ConversationStore persists conversations. Every read or write that names a
// conversation is scoped by its owner: a conversation owned by someone else
// is reported exactly like a missing one.
type ConversationStore interface {
	// CreateConversation inserts a new conversation.
	CreateConversation(ctx context.Context, c *domain.Conversation) error

	// ConversationByID returns the conversation if it exists and is owned
	// by userID, otherwise a NotFoundError.
	ConversationByID(ctx context.Context, userID, conversationID string) (*domain.Conversation, error)

	// ListConversations returns up to limit conversations owned by userID,
	// most recently updated first.
	ListConversations(ctx context.Context, userID string, limit int) ([]domain.Conversation, error)

	// RenameConversation updates the title of an owned conversation.
	RenameConversation(ctx context.Context, userID, conversationID, title string) error

	// TouchConversation updates the denormalized summary fields after a
	// completed turn. Not owner-scoped: the pipeline has already verified
	// ownership before any write happens.
	TouchConversation(ctx context.Context, conversationID, lastMessage string, at time.Time) error

	// DeleteConversation removes an owned conversation and all of its
	// messages.
	DeleteConversation(ctx context.Context, userID, conversationID string) error
}

// MessageStore persists messages. Messages are append-only.
type MessageStore interface {
	// CreateMessage inserts a new message.
	CreateMessage(ctx context.Context, m *domain.Message) error

	// ListMessages returns every message of the conversation, oldest first.
	ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error)

	// RecentMessages returns the most recent limit messages of the
	// conversation, newest first.
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
}

// NotificationStore persists owner-scoped notifications.
type NotificationStore interface {
	// CreateNotification inserts a new notification.
	CreateNotification(ctx context.Context, n *domain.Notification) error

	// ListNotifications returns the user's notifications, newest first.
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)

	// MarkNotificationRead marks one owned notification as read.
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error

	// MarkAllNotificationsRead marks every notification of the user as read.
	MarkAllNotificationsRead(ctx context.Context, userID string) error
}

// Store is the full persistence surface the server wires together.
type Store interface {
	UserStore
	ConversationStore
	MessageStore
	NotificationStore

	// Close releases the underlying resources.
	Close() error
}
