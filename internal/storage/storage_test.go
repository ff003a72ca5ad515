package storage_test

import (
	"context"
	"testing"
	"time"

	"heartline/backend/internal/models"
	"heartline/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *storage.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every new connection to :memory: is a fresh database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, storage.Migrate(db))
	return storage.NewStorageService(db, nil)
}

func seedMatch(t *testing.T, s *storage.Service) *models.Match {
	t.Helper()

	alice := &models.User{DisplayName: "Alice"}
	bob := &models.User{DisplayName: "Bob"}
	require.NoError(t, s.DB.Create(alice).Error)
	require.NoError(t, s.DB.Create(bob).Error)

	match := &models.Match{User1ID: alice.ID, User2ID: bob.ID, Status: models.MatchActive}
	require.NoError(t, s.DB.Create(match).Error)
	return match
}

func TestGetMatchByID(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	match := seedMatch(t, s)

	got, err := s.GetMatchByID(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, match.User1ID, got.User1ID)
	assert.True(t, got.IsActive())

	_, err = s.GetMatchByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUnmatchMatch(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	match := seedMatch(t, s)

	require.NoError(t, s.UnmatchMatch(ctx, match.ID))

	got, err := s.GetMatchByID(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchUnmatched, got.Status)
	assert.NotNil(t, got.UnmatchedAt)

	// Second unmatch is a no-op.
	assert.NoError(t, s.UnmatchMatch(ctx, match.ID))
	assert.ErrorIs(t, s.UnmatchMatch(ctx, "missing"), storage.ErrNotFound)
}

func TestSaveMessage_AssignsIDAndTimestamp(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	match := seedMatch(t, s)

	msg := &models.Message{MatchID: match.ID, SenderID: match.User1ID, Content: "hi", Type: models.MessageText}
	require.NoError(t, s.SaveMessage(ctx, msg))

	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())

	got, err := s.GetMessageByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Content)
	assert.Nil(t, got.ReadAt)

	_, err = s.GetMessageByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMarkMessageRead_OnlyOnce(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	match := seedMatch(t, s)

	msg := &models.Message{MatchID: match.ID, SenderID: match.User1ID, Content: "hi", Type: models.MessageText}
	require.NoError(t, s.SaveMessage(ctx, msg))

	first := time.Now().UTC().Truncate(time.Second)
	updated, err := s.MarkMessageRead(ctx, msg.ID, first)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = s.MarkMessageRead(ctx, msg.ID, first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, updated, "read_at must not change after the first transition")

	got, err := s.GetMessageByID(ctx, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReadAt)
	assert.True(t, got.ReadAt.Equal(first))
}

func TestGetChatHistory_NewestFirstWithCursor(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	match := seedMatch(t, s)

	base := time.Now().Add(-time.Hour).UTC()
	for i, text := range []string{"one", "two", "three"} {
		msg := &models.Message{
			MatchID:   match.ID,
			SenderID:  match.User1ID,
			Content:   text,
			Type:      models.MessageText,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.SaveMessage(ctx, msg))
	}

	history, err := s.GetChatHistory(ctx, match.ID, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "three", history[0].Content)
	assert.Equal(t, "one", history[2].Content)

	older, err := s.GetChatHistory(ctx, match.ID, history[0].CreatedAt, 1)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, "two", older[0].Content)
}

func TestNotifications(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	match := seedMatch(t, s)

	for i := 0; i < 3; i++ {
		n := &models.Notification{
			UserID:    match.User2ID,
			Title:     "New message",
			Content:   "hi",
			Type:      models.NotificationMessage,
			RelatedID: match.ID,
		}
		require.NoError(t, s.SaveNotification(ctx, n))
	}

	page, total, err := s.GetNotifications(ctx, match.User2ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	unread, err := s.GetUnreadNotificationCount(ctx, match.User2ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	// Another user cannot mark it read.
	assert.ErrorIs(t, s.MarkNotificationRead(ctx, match.User1ID, page[0].ID), storage.ErrNotFound)

	require.NoError(t, s.MarkNotificationRead(ctx, match.User2ID, page[0].ID))
	unread, err = s.GetUnreadNotificationCount(ctx, match.User2ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)
}

func TestPresenceVisibility(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	match := seedMatch(t, s)

	visible, err := s.IsPresenceVisible(ctx, match.User1ID)
	require.NoError(t, err)
	assert.True(t, visible, "visibility defaults to on")

	require.NoError(t, s.SetPresenceVisibility(ctx, match.User1ID, false))
	visible, err = s.IsPresenceVisible(ctx, match.User1ID)
	require.NoError(t, err)
	assert.False(t, visible)

	_, err = s.IsPresenceVisible(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.SetPresenceVisibility(ctx, "missing", true), storage.ErrNotFound)
}

func TestLinkTelegram_MovesChatBetweenUsers(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	match := seedMatch(t, s)

	require.NoError(t, s.LinkTelegram(ctx, match.User1ID, 4242))
	require.NoError(t, s.LinkTelegram(ctx, match.User2ID, 4242))

	first, err := s.GetUserByID(ctx, match.User1ID)
	require.NoError(t, err)
	second, err := s.GetUserByID(ctx, match.User2ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.TelegramChatID)
	assert.Equal(t, int64(4242), second.TelegramChatID)

	require.NoError(t, s.UnlinkTelegram(ctx, 4242))
	second, err = s.GetUserByID(ctx, match.User2ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.TelegramChatID)

	assert.ErrorIs(t, s.LinkTelegram(ctx, "missing", 1), storage.ErrNotFound)
}
