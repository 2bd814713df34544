// Package store provides owner-scoped persistence for users, conversations,
// messages, and notifications.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/orbitchat/orbit-chat/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    credits INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    last_message TEXT NOT NULL DEFAULT '',
    last_message_time TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL,
    sender TEXT NOT NULL,
    content TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation_time
    ON messages(conversation_id, timestamp);

CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    message TEXT NOT NULL,
    read INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_notifications_user
    ON notifications(user_id, created_at);`

// SQLiteStore implements Store on top of a sqlite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dsn and applies the schema.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ----------------------------------------------------------------------------
// Users
// ----------------------------------------------------------------------------

func (s *SQLiteStore) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO users (id, username, password_hash, credits, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.Credits, u.CreatedAt)
	return err
}

func (s *SQLiteStore) UserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
        SELECT id, username, password_hash, credits, created_at
        FROM users WHERE id = ?`, id))
}

func (s *SQLiteStore) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
        SELECT id, username, password_hash, credits, created_at
        FROM users WHERE username = ?`, username))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Credits, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("User", "")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SpendCredit decrements the balance in a single statement guarded by
// credits > 0, so concurrent turns can never drive the balance negative.
func (s *SQLiteStore) SpendCredit(ctx context.Context, userID string) (int, error) {
	_, err := s.db.ExecContext(ctx, `
        UPDATE users SET credits = credits - 1
        WHERE id = ? AND credits > 0`, userID)
	if err != nil {
		return 0, err
	}

	var credits int
	err = s.db.QueryRowContext(ctx,
		`SELECT credits FROM users WHERE id = ?`, userID).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NewNotFoundError("User", userID)
	}
	if err != nil {
		return 0, err
	}
	return credits, nil
}

// ----------------------------------------------------------------------------
// Conversations
// ----------------------------------------------------------------------------

func (s *SQLiteStore) CreateConversation(ctx context.Context, c *domain.Conversation) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO conversations (id, user_id, title, last_message, last_message_time, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, c.LastMessage, nullTime(c.LastMessageTime), c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *SQLiteStore) ConversationByID(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, user_id, title, last_message, last_message_time, created_at, updated_at
        FROM conversations
        WHERE id = ? AND user_id = ?`, conversationID, userID)

	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("Conversation", conversationID)
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *SQLiteStore) ListConversations(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, title, last_message, last_message_time, created_at, updated_at
        FROM conversations
        WHERE user_id = ?
        ORDER BY updated_at DESC
        LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := make([]domain.Conversation, 0)
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *conv)
	}
	return conversations, rows.Err()
}

func (s *SQLiteStore) RenameConversation(ctx context.Context, userID, conversationID, title string) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE conversations SET title = ?, updated_at = ?
        WHERE id = ? AND user_id = ?`,
		title, time.Now().UTC(), conversationID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res, "Conversation", conversationID)
}

func (s *SQLiteStore) TouchConversation(ctx context.Context, conversationID, lastMessage string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE conversations SET last_message = ?, last_message_time = ?, updated_at = ?
        WHERE id = ?`,
		lastMessage, at, at, conversationID)
	return err
}

// DeleteConversation removes the conversation and its messages in one
// transaction, so a crash can never orphan messages.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM conversations WHERE id = ? AND user_id = ?`,
		conversationID, userID)
	if err != nil {
		return err
	}
	if err := requireAffected(res, "Conversation", conversationID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
		return err
	}

	return tx.Commit()
}

// ----------------------------------------------------------------------------
// Messages
// ----------------------------------------------------------------------------

func (s *SQLiteStore) CreateMessage(ctx context.Context, m *domain.Message) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO messages (id, conversation_id, sender, content, timestamp)
        VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.Sender, m.Content, m.Timestamp)
	return err
}

func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	return s.queryMessages(ctx, `
        SELECT id, conversation_id, sender, content, timestamp
        FROM messages
        WHERE conversation_id = ?
        ORDER BY timestamp ASC`, conversationID)
}

func (s *SQLiteStore) RecentMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	return s.queryMessages(ctx, `
        SELECT id, conversation_id, sender, content, timestamp
        FROM messages
        WHERE conversation_id = ?
        ORDER BY timestamp DESC
        LIMIT ?`, conversationID, limit)
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Sender, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ----------------------------------------------------------------------------
// Notifications
// ----------------------------------------------------------------------------

func (s *SQLiteStore) CreateNotification(ctx context.Context, n *domain.Notification) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO notifications (id, user_id, message, read, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Message, n.Read, n.CreatedAt)
	return err
}

func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, message, read, created_at
        FROM notifications
        WHERE user_id = ?
        ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE notifications SET read = 1
        WHERE id = ? AND user_id = ?`, notificationID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res, "Notification", notificationID)
}

func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE user_id = ?`, userID)
	return err
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*domain.Conversation, error) {
	var c domain.Conversation
	var last sql.NullTime
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.LastMessage, &last, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		c.LastMessageTime = last.Time
	}
	return &c, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func requireAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError(resource, id)
	}
	return nil
}
