// Package chat implements the credit-metered message pipeline: validation,
// credit check, ownership check, provider dispatch, persistence, and debit.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orbitchat/orbit-chat/internal/adapter"
	"github.com/orbitchat/orbit-chat/internal/domain"
	"github.com/orbitchat/orbit-chat/internal/store"
)

const (
	// ApologyMessage is persisted as the AI turn whenever the provider call
	// fails. The turn still completes and still costs a credit; provider
	// errors never surface to the client.
	ApologyMessage = "I'm sorry, I'm having trouble connecting to the AI service right now. Please try again later."

	// MaxConversations is the hard cap on the conversation list. This is not
	// a page size: there is no cursor, callers never see more than this.
	MaxConversations = 20

	// lastCreditNotice is pushed to the user's notifications when a turn
	// consumes the final credit.
	lastCreditNotice = "You've used your last credit. Top up to keep chatting with the AI."
)

// Service orchestrates chat turns and conversation management.
type Service struct {
	store     store.Store
	generator adapter.Generator
	logger    *slog.Logger
}

// ServiceOption is a functional option for configuring Service.
type ServiceOption func(*Service)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a chat Service over the given store and generator.
func NewService(st store.Store, generator adapter.Generator, opts ...ServiceOption) *Service {
	s := &Service{
		store:     st,
		generator: generator,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TurnResult is the outcome of one completed chat turn.
type TurnResult struct {
	UserMessage *domain.Message
	AIMessage   *domain.Message
	Credits     int
}

// SendMessage executes one chat turn for userID against an owned
// conversation.
//
// Preconditions, checked in order: non-empty content, positive credit
// balance, conversation ownership. Side effects, in order: persist the user
// message, call the provider (falling back to ApologyMessage on any provider
// error), persist the AI message, debit one credit, update the conversation
// summary. A provider failure does not abort the turn and does not refund
// the credit.
func (s *Service) SendMessage(ctx context.Context, userID, conversationID, content string) (*TurnResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewValidationError("content", "is required")
	}
	if strings.TrimSpace(conversationID) == "" {
		return nil, domain.NewValidationError("conversationId", "is required")
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Credits <= 0 {
		return nil, &domain.InsufficientCreditsError{Credits: user.Credits}
	}

	conv, err := s.store.ConversationByID(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	userMsg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Sender:         domain.SenderUser,
		Content:        content,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.store.CreateMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	reply, err := s.generator.Generate(ctx, conv.ID, content)
	if err != nil {
		s.logger.Error("AI provider call failed",
			slog.String("provider", s.generator.Name()),
			slog.String("conversation_id", conv.ID),
			slog.String("error", err.Error()),
		)
		reply = ApologyMessage
	}

	aiMsg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Sender:         domain.SenderAI,
		Content:        reply,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.store.CreateMessage(ctx, aiMsg); err != nil {
		return nil, err
	}

	credits, err := s.store.SpendCredit(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.TouchConversation(ctx, conv.ID, aiMsg.Content, aiMsg.Timestamp); err != nil {
		return nil, err
	}

	if credits == 0 {
		s.notifyLastCredit(ctx, userID)
	}

	return &TurnResult{
		UserMessage: userMsg,
		AIMessage:   aiMsg,
		Credits:     credits,
	}, nil
}

// CreateConversation creates an empty conversation with the given title.
func (s *Service) CreateConversation(ctx context.Context, userID, title string) (*domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.NewValidationError("title", "is required")
	}

	now := time.Now().UTC()
	conv := &domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// RenameConversation updates the title of an owned conversation.
func (s *Service) RenameConversation(ctx context.Context, userID, conversationID, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.NewValidationError("title", "is required")
	}

	if err := s.store.RenameConversation(ctx, userID, conversationID, title); err != nil {
		return "", err
	}
	return title, nil
}

// DeleteConversation removes an owned conversation and all of its messages.
func (s *Service) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	return s.store.DeleteConversation(ctx, userID, conversationID)
}

// ListConversations returns the user's conversations, most recently updated
// first, capped at MaxConversations.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.store.ListConversations(ctx, userID, MaxConversations)
}

// ListMessages returns every message of an owned conversation, oldest first.
func (s *Service) ListMessages(ctx context.Context, userID, conversationID string) ([]domain.Message, error) {
	if _, err := s.store.ConversationByID(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, conversationID)
}

// notifyLastCredit records an exhausted-balance notification. Failures are
// logged and swallowed; the turn itself has already completed.
func (s *Service) notifyLastCredit(ctx context.Context, userID string) {
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   lastCreditNotice,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		s.logger.Warn("failed to create credit notification",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
