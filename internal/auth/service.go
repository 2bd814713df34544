// Package auth provides account registration, login, and bearer-token
// verification.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/orbitchat/orbit-chat/internal/domain"
	"github.com/orbitchat/orbit-chat/internal/store"
)

// ErrBadCredentials is returned when a login fails. It is deliberately the
// same for unknown usernames and wrong passwords.
var ErrBadCredentials = errors.New("invalid username or password")

// ErrUsernameTaken is returned when a registration collides with an
// existing account.
var ErrUsernameTaken = errors.New("username already taken")

const welcomeNotice = "Welcome! Your account starts with free credits. Each AI reply costs one credit."

// Service handles account lifecycle against the user store.
type Service struct {
	users          store.UserStore
	notifications  store.NotificationStore
	tokens         *TokenManager
	initialCredits int
}

// NewService creates the auth Service. initialCredits is the balance
// granted to each new account.
func NewService(users store.UserStore, notifications store.NotificationStore, tokens *TokenManager, initialCredits int) *Service {
	return &Service{
		users:          users,
		notifications:  notifications,
		tokens:         tokens,
		initialCredits: initialCredits,
	}
}

// Register creates an account, grants the initial credit balance, and
// returns the user plus a freshly issued token.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", domain.NewValidationError("username", "is required")
	}
	if password == "" {
		return nil, "", domain.NewValidationError("password", "is required")
	}

	if _, err := s.users.UserByUsername(ctx, username); err == nil {
		return nil, "", ErrUsernameTaken
	} else if !domain.IsNotFoundError(err) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Credits:      s.initialCredits,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	// Best effort; registration has already succeeded.
	_ = s.notifications.CreateNotification(ctx, &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Message:   welcomeNotice,
		CreatedAt: time.Now().UTC(),
	})

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the user plus a freshly issued
// token.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if domain.IsNotFoundError(err) {
			return nil, "", ErrBadCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrBadCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Profile returns the account for the given user id.
func (s *Service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.UserByID(ctx, userID)
}
