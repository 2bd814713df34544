package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/orbitchat/orbit-chat/internal/domain"
)

// runStoreTests runs the behavioral suite against a Store implementation.
// Both backends must agree on ownership scoping, ordering, and the credit
// floor.
func runStoreTests(t *testing.T, open func(t *testing.T) Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("spend credit floor", func(t *testing.T) { testSpendCredit(t, open(t)) })
	t.Run("conversation ownership", func(t *testing.T) { testConversationOwnership(t, open(t)) })
	t.Run("conversation list order and limit", func(t *testing.T) { testConversationList(t, open(t)) })
	t.Run("delete cascades", func(t *testing.T) { testDeleteCascade(t, open(t)) })
	t.Run("message ordering", func(t *testing.T) { testMessageOrdering(t, open(t)) })
	t.Run("notifications", func(t *testing.T) { testNotifications(t, open(t)) })
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		return NewMemory()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("NewSQLite() error = %v", err)
		}
		t.Cleanup(func() { st.Close() })
		return st
	})
}

func seedUser(t *testing.T, st Store, credits int) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        uuid.NewString(),
		Username:  "u-" + uuid.NewString()[:8],
		Credits:   credits,
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

func seedConversation(t *testing.T, st Store, userID string, at time.Time) *domain.Conversation {
	t.Helper()
	c := &domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     "seeded",
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := st.CreateConversation(context.Background(), c); err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}
	return c
}

func seedMessage(t *testing.T, st Store, conversationID string, sender domain.Sender, content string, at time.Time) *domain.Message {
	t.Helper()
	m := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Sender:         sender,
		Content:        content,
		Timestamp:      at,
	}
	if err := st.CreateMessage(context.Background(), m); err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}
	return m
}

func testUsers(t *testing.T, st Store) {
	ctx := context.Background()
	u := seedUser(t, st, 100)

	byID, err := st.UserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("UserByID() error = %v", err)
	}
	if byID.Username != u.Username || byID.Credits != 100 {
		t.Errorf("UserByID() = %+v, want username %q credits 100", byID, u.Username)
	}

	byName, err := st.UserByUsername(ctx, u.Username)
	if err != nil {
		t.Fatalf("UserByUsername() error = %v", err)
	}
	if byName.ID != u.ID {
		t.Errorf("UserByUsername() id = %s, want %s", byName.ID, u.ID)
	}

	if _, err := st.UserByID(ctx, "missing"); !domain.IsNotFoundError(err) {
		t.Errorf("UserByID(missing) error = %v, want NotFoundError", err)
	}
	if _, err := st.UserByUsername(ctx, "nobody"); !domain.IsNotFoundError(err) {
		t.Errorf("UserByUsername(nobody) error = %v, want NotFoundError", err)
	}
}

func testSpendCredit(t *testing.T, st Store) {
	ctx := context.Background()
	u := seedUser(t, st, 2)

	for want := 1; want >= 0; want-- {
		got, err := st.SpendCredit(ctx, u.ID)
		if err != nil {
			t.Fatalf("SpendCredit() error = %v", err)
		}
		if got != want {
			t.Fatalf("SpendCredit() = %d, want %d", got, want)
		}
	}

	// The balance never goes below zero, no matter how often it is debited.
	got, err := st.SpendCredit(ctx, u.ID)
	if err != nil {
		t.Fatalf("SpendCredit() at zero error = %v", err)
	}
	if got != 0 {
		t.Errorf("SpendCredit() at zero = %d, want floor 0", got)
	}

	if _, err := st.SpendCredit(ctx, "missing"); !domain.IsNotFoundError(err) {
		t.Errorf("SpendCredit(missing) error = %v, want NotFoundError", err)
	}
}

func testConversationOwnership(t *testing.T, st Store) {
	ctx := context.Background()
	owner := seedUser(t, st, 1)
	other := seedUser(t, st, 1)
	conv := seedConversation(t, st, owner.ID, time.Now().UTC())

	if _, err := st.ConversationByID(ctx, owner.ID, conv.ID); err != nil {
		t.Fatalf("ConversationByID(owner) error = %v", err)
	}

	// Another user's lookup is indistinguishable from absence.
	if _, err := st.ConversationByID(ctx, other.ID, conv.ID); !domain.IsNotFoundError(err) {
		t.Errorf("ConversationByID(other) error = %v, want NotFoundError", err)
	}
	if err := st.RenameConversation(ctx, other.ID, conv.ID, "stolen"); !domain.IsNotFoundError(err) {
		t.Errorf("RenameConversation(other) error = %v, want NotFoundError", err)
	}
	if err := st.DeleteConversation(ctx, other.ID, conv.ID); !domain.IsNotFoundError(err) {
		t.Errorf("DeleteConversation(other) error = %v, want NotFoundError", err)
	}

	// The failed rename and delete must not have touched the row.
	got, err := st.ConversationByID(ctx, owner.ID, conv.ID)
	if err != nil {
		t.Fatalf("ConversationByID(owner) after attacks error = %v", err)
	}
	if got.Title != "seeded" {
		t.Errorf("title = %q, want %q", got.Title, "seeded")
	}
}

func testConversationList(t *testing.T, st Store) {
	ctx := context.Background()
	u := seedUser(t, st, 1)
	stranger := seedUser(t, st, 1)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		c := seedConversation(t, st, u.ID, base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, c.ID)
	}
	seedConversation(t, st, stranger.ID, base.Add(time.Hour))

	list, err := st.ListConversations(ctx, u.ID, 3)
	if err != nil {
		t.Fatalf("ListConversations() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want limit 3", len(list))
	}
	// Most recently updated first.
	wantOrder := []string{ids[4], ids[3], ids[2]}
	for i, want := range wantOrder {
		if list[i].ID != want {
			t.Errorf("list[%d] = %s, want %s", i, list[i].ID, want)
		}
	}

	// Touching an old conversation moves it to the front.
	if err := st.TouchConversation(ctx, ids[0], "latest reply", base.Add(2*time.Hour)); err != nil {
		t.Fatalf("TouchConversation() error = %v", err)
	}
	list, err = st.ListConversations(ctx, u.ID, 3)
	if err != nil {
		t.Fatalf("ListConversations() error = %v", err)
	}
	if list[0].ID != ids[0] {
		t.Errorf("list[0] = %s, want touched conversation %s", list[0].ID, ids[0])
	}
	if list[0].LastMessage != "latest reply" {
		t.Errorf("lastMessage = %q, want %q", list[0].LastMessage, "latest reply")
	}
	if list[0].LastMessageTime.IsZero() {
		t.Errorf("lastMessageTime is zero after touch")
	}
}

func testDeleteCascade(t *testing.T, st Store) {
	ctx := context.Background()
	u := seedUser(t, st, 1)
	conv := seedConversation(t, st, u.ID, time.Now().UTC())
	keep := seedConversation(t, st, u.ID, time.Now().UTC())

	now := time.Now().UTC()
	seedMessage(t, st, conv.ID, domain.SenderUser, "hello", now)
	seedMessage(t, st, conv.ID, domain.SenderAI, "hi", now.Add(time.Second))
	kept := seedMessage(t, st, keep.ID, domain.SenderUser, "other", now)

	if err := st.DeleteConversation(ctx, u.ID, conv.ID); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}

	if _, err := st.ConversationByID(ctx, u.ID, conv.ID); !domain.IsNotFoundError(err) {
		t.Errorf("ConversationByID(deleted) error = %v, want NotFoundError", err)
	}

	msgs, err := st.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListMessages(deleted) error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("messages after cascade = %d, want 0", len(msgs))
	}

	// The sibling conversation is untouched.
	msgs, err = st.ListMessages(ctx, keep.ID)
	if err != nil {
		t.Fatalf("ListMessages(kept) error = %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != kept.ID {
		t.Errorf("kept conversation messages = %v, want the one seeded message", msgs)
	}
}

func testMessageOrdering(t *testing.T, st Store) {
	ctx := context.Background()
	u := seedUser(t, st, 1)
	conv := seedConversation(t, st, u.ID, time.Now().UTC())

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 12; i++ {
		m := seedMessage(t, st, conv.ID, domain.SenderUser, "m", base.Add(time.Duration(i)*time.Second))
		ids = append(ids, m.ID)
	}

	// ListMessages: every message, oldest first, no window.
	all, err := st.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(all) != 12 {
		t.Fatalf("ListMessages() len = %d, want 12", len(all))
	}
	for i, m := range all {
		if m.ID != ids[i] {
			t.Fatalf("ListMessages()[%d] = %s, want %s", i, m.ID, ids[i])
		}
	}

	// RecentMessages: newest first, trimmed to the limit.
	recent, err := st.RecentMessages(ctx, conv.ID, 10)
	if err != nil {
		t.Fatalf("RecentMessages() error = %v", err)
	}
	if len(recent) != 10 {
		t.Fatalf("RecentMessages() len = %d, want 10", len(recent))
	}
	for i, m := range recent {
		if want := ids[11-i]; m.ID != want {
			t.Fatalf("RecentMessages()[%d] = %s, want %s", i, m.ID, want)
		}
	}
}

func testNotifications(t *testing.T, st Store) {
	ctx := context.Background()
	u := seedUser(t, st, 1)
	other := seedUser(t, st, 1)

	base := time.Now().UTC()
	first := &domain.Notification{ID: uuid.NewString(), UserID: u.ID, Message: "one", CreatedAt: base}
	second := &domain.Notification{ID: uuid.NewString(), UserID: u.ID, Message: "two", CreatedAt: base.Add(time.Second)}
	for _, n := range []*domain.Notification{first, second} {
		if err := st.CreateNotification(ctx, n); err != nil {
			t.Fatalf("CreateNotification() error = %v", err)
		}
	}

	list, err := st.ListNotifications(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != second.ID {
		t.Errorf("list[0] = %s, want newest %s", list[0].ID, second.ID)
	}

	// Mark-read is owner-scoped.
	if err := st.MarkNotificationRead(ctx, other.ID, first.ID); !domain.IsNotFoundError(err) {
		t.Errorf("MarkNotificationRead(other) error = %v, want NotFoundError", err)
	}
	if err := st.MarkNotificationRead(ctx, u.ID, first.ID); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}

	list, _ = st.ListNotifications(ctx, u.ID)
	for _, n := range list {
		if n.ID == first.ID && !n.Read {
			t.Errorf("notification %s still unread", first.ID)
		}
		if n.ID == second.ID && n.Read {
			t.Errorf("notification %s unexpectedly read", second.ID)
		}
	}

	if err := st.MarkAllNotificationsRead(ctx, u.ID); err != nil {
		t.Fatalf("MarkAllNotificationsRead() error = %v", err)
	}
	list, _ = st.ListNotifications(ctx, u.ID)
	for _, n := range list {
		if !n.Read {
			t.Errorf("notification %s unread after mark-all", n.ID)
		}
	}
}
