package chathub_test

import (
	"errors"
	"testing"
	"time"

	"heartline/backend/internal/chathub"
	"heartline/backend/internal/models"
	"heartline/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func unreadMessage() *models.Message {
	return &models.Message{ID: "msg-1", MatchID: "m1", SenderID: "alice", Content: "hi", Type: models.MessageText}
}

func TestMarkRead_SetsOnceAndBroadcastsToRoom(t *testing.T) {
	hub, s := newTestHub()
	allowPresence(s)
	s.On("GetMatchByID", "m1").Return(activeMatch(), nil)

	readAt := time.Now().UTC()
	read := unreadMessage()
	read.ReadAt = &readAt
	s.On("GetMessageByID", "msg-1").Return(unreadMessage(), nil).Once()
	s.On("GetMessageByID", "msg-1").Return(read, nil)
	s.On("MarkMessageRead", "msg-1", mock.AnythingOfType("time.Time")).Return(true, nil).Once()

	alice := newMockClient("alice", "a1")
	bob := newMockClient("bob", "b1")
	register(t, hub, alice, bob)
	joinAll(t, hub, "m1", alice, bob)

	require.NoError(t, hub.MarkRead(ctx, bob, "msg-1"))

	for _, c := range []*MockClient{alice, bob} {
		got := c.Named(models.EventMessageRead)
		require.Len(t, got, 1)
		receipt := decode[models.ReadReceiptPayload](got[0])
		assert.Equal(t, "msg-1", receipt.MessageID)
		assert.Equal(t, "m1", receipt.MatchID)
		assert.False(t, receipt.ReadAt.IsZero())
	}

	require.NoError(t, hub.MarkRead(ctx, bob, "msg-1"), "second read is a no-op")
	assert.Empty(t, alice.Drain())
	assert.Empty(t, bob.Drain())
	s.AssertNumberOfCalls(t, "MarkMessageRead", 1)
}

func TestMarkRead_Denials(t *testing.T) {
	hub, s := newTestHub()
	allowPresence(s)
	s.On("GetMatchByID", "m1").Return(activeMatch(), nil)
	s.On("GetMessageByID", "msg-1").Return(unreadMessage(), nil)
	s.On("GetMessageByID", "gone").Return(nil, storage.ErrNotFound)

	alice := newMockClient("alice", "a1")
	mallory := newMockClient("mallory", "x1")
	register(t, hub, alice, mallory)

	assert.ErrorIs(t, hub.MarkRead(ctx, alice, "msg-1"), chathub.ErrForbidden, "sender cannot read their own message")
	assert.ErrorIs(t, hub.MarkRead(ctx, mallory, "msg-1"), chathub.ErrForbidden)
	assert.ErrorIs(t, hub.MarkRead(ctx, alice, "gone"), chathub.ErrNotFound)

	s.AssertNotCalled(t, "MarkMessageRead", mock.Anything, mock.Anything)
}

func TestMarkRead_UnmatchedMatchIsDenied(t *testing.T) {
	hub, s := newTestHub()
	allowPresence(s)
	s.On("GetMatchByID", "m1").Return(unmatchedMatch(), nil)
	s.On("GetMessageByID", "msg-1").Return(unreadMessage(), nil)

	alice := newMockClient("alice", "a1")
	bob := newMockClient("bob", "b1")
	register(t, hub, alice, bob)
	alice.Drain()

	assert.ErrorIs(t, hub.MarkRead(ctx, bob, "msg-1"), chathub.ErrMatchInactive)

	s.AssertNotCalled(t, "MarkMessageRead", mock.Anything, mock.Anything)
	assert.Empty(t, alice.Named(models.EventMessageRead))
}

func TestMarkRead_LosingConcurrentReaderIsNoop(t *testing.T) {
	hub, s := newTestHub()
	allowPresence(s)
	s.On("GetMatchByID", "m1").Return(activeMatch(), nil)
	s.On("GetMessageByID", "msg-1").Return(unreadMessage(), nil)
	s.On("MarkMessageRead", "msg-1", mock.Anything).Return(false, nil)

	bob := newMockClient("bob", "b1")
	register(t, hub, bob)
	joinAll(t, hub, "m1", bob)

	require.NoError(t, hub.MarkRead(ctx, bob, "msg-1"))
	assert.Empty(t, bob.Drain())
}

func TestMarkRead_StoreFailure(t *testing.T) {
	hub, s := newTestHub()
	allowPresence(s)
	s.On("GetMatchByID", "m1").Return(activeMatch(), nil)
	s.On("GetMessageByID", "msg-1").Return(unreadMessage(), nil)
	s.On("MarkMessageRead", "msg-1", mock.Anything).Return(false, errors.New("timeout"))

	bob := newMockClient("bob", "b1")
	register(t, hub, bob)

	err := hub.MarkRead(ctx, bob, "msg-1")
	require.Error(t, err)
	assert.False(t, chathub.IsDenial(err))
}

func TestTyping(t *testing.T) {
	hub, s := newTestHub()
	allowPresence(s)
	s.On("GetMatchByID", "m1").Return(activeMatch(), nil)

	alice1 := newMockClient("alice", "a1")
	alice2 := newMockClient("alice", "a2")
	bob := newMockClient("bob", "b1")
	carol := newMockClient("carol", "c1")
	register(t, hub, alice1, alice2, bob, carol)
	joinAll(t, hub, "m1", alice1, alice2, bob)

	require.NoError(t, hub.Typing(alice1, "m1", true))

	assert.Empty(t, alice1.Drain(), "sender is excluded")
	for _, c := range []*MockClient{alice2, bob} {
		got := c.Named(models.EventTypingStart)
		require.Len(t, got, 1)
		signal := decode[models.TypingSignal](got[0])
		assert.Equal(t, "alice", signal.UserID)
		assert.Equal(t, "m1", signal.MatchID)
	}

	ev, err := models.NewEvent(models.EventTypingStop, models.MatchPayload{MatchID: "m1"})
	require.NoError(t, err)
	hub.HandleEvent(ctx, alice1, ev)
	assert.Len(t, bob.Named(models.EventTypingStop), 1)

	carol.Drain()
	assert.ErrorIs(t, hub.Typing(carol, "m1", true), chathub.ErrNotJoined)
	assert.Empty(t, bob.Drain())
	s.AssertNotCalled(t, "SaveMessage", mock.Anything)
}
