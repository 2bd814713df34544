// Package store provides owner-scoped persistence for users, conversations,
// messages, and notifications.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/orbitchat/orbit-chat/internal/domain"
)

// MemoryStore is a thread-safe in-memory Store. It backs tests and the
// memory database driver; semantics match SQLiteStore, including the
// decrement-with-floor credit debit.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]*domain.User
	conversations map[string]*domain.Conversation
	messages      map[string][]domain.Message // keyed by conversation id
	notifications map[string]*domain.Notification
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*domain.User),
		conversations: make(map[string]*domain.Conversation),
		messages:      make(map[string][]domain.Message),
		notifications: make(map[string]*domain.Notification),
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// ----------------------------------------------------------------------------
// Users
// ----------------------------------------------------------------------------

func (s *MemoryStore) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) UserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id)
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) UserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.NewNotFoundError("User", username)
}

func (s *MemoryStore) SpendCredit(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return 0, domain.NewNotFoundError("User", userID)
	}
	if u.Credits > 0 {
		u.Credits--
	}
	return u.Credits, nil
}

// ----------------------------------------------------------------------------
// Conversations
// ----------------------------------------------------------------------------

func (s *MemoryStore) CreateConversation(_ context.Context, c *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	s.conversations[c.ID] = &cp
	return nil
}

func (s *MemoryStore) ConversationByID(_ context.Context, userID, conversationID string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[conversationID]
	if !ok || c.UserID != userID {
		return nil, domain.NewNotFoundError("Conversation", conversationID)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListConversations(_ context.Context, userID string, limit int) ([]domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Conversation, 0)
	for _, c := range s.conversations {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) RenameConversation(_ context.Context, userID, conversationID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok || c.UserID != userID {
		return domain.NewNotFoundError("Conversation", conversationID)
	}
	c.Title = title
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) TouchConversation(_ context.Context, conversationID, lastMessage string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok {
		return domain.NewNotFoundError("Conversation", conversationID)
	}
	c.LastMessage = lastMessage
	c.LastMessageTime = at
	c.UpdatedAt = at
	return nil
}

func (s *MemoryStore) DeleteConversation(_ context.Context, userID, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok || c.UserID != userID {
		return domain.NewNotFoundError("Conversation", conversationID)
	}
	delete(s.conversations, conversationID)
	delete(s.messages, conversationID)
	return nil
}

// ----------------------------------------------------------------------------
// Messages
// ----------------------------------------------------------------------------

func (s *MemoryStore) CreateMessage(_ context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[m.ConversationID] = append(s.messages[m.ConversationID], *m)
	return nil
}

func (s *MemoryStore) ListMessages(_ context.Context, conversationID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[conversationID]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) RecentMessages(_ context.Context, conversationID string, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[conversationID]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// Notifications
// ----------------------------------------------------------------------------

func (s *MemoryStore) CreateNotification(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *MemoryStore) ListNotifications(_ context.Context, userID string) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) MarkNotificationRead(_ context.Context, userID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != userID {
		return domain.NewNotFoundError("Notification", notificationID)
	}
	n.Read = true
	return nil
}

func (s *MemoryStore) MarkAllNotificationsRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}
