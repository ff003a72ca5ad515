package chathub_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"heartline/backend/internal/chathub"
	"heartline/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleEvent_RejectsBadInput(t *testing.T) {
	hub, s := newTestHub()
	allowPresence(s)

	alice := newMockClient("alice", "a1")
	register(t, hub, alice)

	cases := []struct {
		name  string
		event models.Event
	}{
		{"unknown event", models.Event{Name: "match:delete", Data: json.RawMessage(`{}`)}},
		{"malformed data", models.Event{Name: models.EventMessageSend, Data: json.RawMessage(`"hi"`)}},
		{"missing match id", models.Event{Name: models.EventMatchJoin, Data: json.RawMessage(`{}`)}},
		{"missing message id", models.Event{Name: models.EventMessageRead}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hub.HandleEvent(ctx, alice, tc.event)

			errs := alice.Named(models.EventError)
			require.Len(t, errs, 1)
			payload := decode[models.ErrorPayload](errs[0])
			assert.Equal(t, chathub.CodeInvalidPayload, payload.Code)
			assert.Equal(t, tc.event.Name, payload.Event)
		})
	}

	s.AssertNotCalled(t, "GetMatchByID", "")
}

func TestHandleEvent_JoinAndLeave(t *testing.T) {
	hub, s := newTestHub()
	allowPresence(s)
	s.On("GetMatchByID", "m1").Return(activeMatch(), nil)

	alice := newMockClient("alice", "a1")
	register(t, hub, alice)

	join, err := models.NewEvent(models.EventMatchJoin, models.MatchPayload{MatchID: "m1"})
	require.NoError(t, err)
	hub.HandleEvent(ctx, alice, join)
	assert.True(t, hub.Rooms().IsMember(alice, "m1"))
	assert.Len(t, alice.Named(models.EventMatchJoined), 1)

	leave, err := models.NewEvent(models.EventMatchLeave, models.MatchPayload{MatchID: "m1"})
	require.NoError(t, err)
	hub.HandleEvent(ctx, alice, leave)
	assert.False(t, hub.Rooms().IsMember(alice, "m1"))
	assert.Empty(t, alice.Drain(), "leave has no reply")
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{chathub.ErrForbidden, chathub.CodeForbidden},
		{chathub.ErrNotJoined, chathub.CodeForbidden},
		{chathub.ErrMatchInactive, chathub.CodeMatchInactive},
		{chathub.ErrNotFound, chathub.CodeNotFound},
		{fmt.Errorf("%w: bad", chathub.ErrInvalidPayload), chathub.CodeInvalidPayload},
		{chathub.ErrContentTooLong, chathub.CodeInvalidPayload},
		{chathub.ErrEmptyMessage, chathub.CodeInvalidPayload},
		{fmt.Errorf("%w: %q", chathub.ErrUnknownEvent, "x"), chathub.CodeInvalidPayload},
		{chathub.ErrRateLimited, chathub.CodeRateLimited},
		{fmt.Errorf("save message: %w", errors.New("boom")), chathub.CodeInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, chathub.ErrorCode(tc.err), tc.err.Error())
	}
	assert.True(t, chathub.IsDenial(chathub.ErrForbidden))
	assert.False(t, chathub.IsDenial(errors.New("boom")))
}
