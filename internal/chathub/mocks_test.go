package chathub_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"heartline/backend/internal/chathub"
	"heartline/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of storage.Storage.
type MockStorage struct {
	mock.Mock
}

// Matches
func (m *MockStorage) GetMatchByID(ctx context.Context, matchID string) (*models.Match, error) {
	args := m.Called(matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *MockStorage) UnmatchMatch(ctx context.Context, matchID string) error {
	args := m.Called(matchID)
	return args.Error(0)
}

// Messages
func (m *MockStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetMessageByID(ctx context.Context, messageID string) (*models.Message, error) {
	args := m.Called(messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) MarkMessageRead(ctx context.Context, messageID string, readAt time.Time) (bool, error) {
	args := m.Called(messageID, readAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetChatHistory(ctx context.Context, matchID string, before time.Time, limit int) ([]models.Message, error) {
	args := m.Called(matchID, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// Notifications
func (m *MockStorage) SaveNotification(ctx context.Context, n *models.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockStorage) GetNotifications(ctx context.Context, userID string, page, limit int) ([]models.Notification, int64, error) {
	args := m.Called(userID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) GetUnreadNotificationCount(ctx context.Context, userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	args := m.Called(userID, notificationID)
	return args.Error(0)
}

// Users
func (m *MockStorage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) IsPresenceVisible(ctx context.Context, userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SetPresenceVisibility(ctx context.Context, userID string, visible bool) error {
	args := m.Called(userID, visible)
	return args.Error(0)
}

func (m *MockStorage) LinkTelegram(ctx context.Context, userID string, chatID int64) error {
	args := m.Called(userID, chatID)
	return args.Error(0)
}

func (m *MockStorage) UnlinkTelegram(ctx context.Context, chatID int64) error {
	args := m.Called(chatID)
	return args.Error(0)
}

// Sessions
func (m *MockStorage) SaveSession(ctx context.Context, jti, userID string, ttl time.Duration) error {
	args := m.Called(jti, userID, ttl)
	return args.Error(0)
}

func (m *MockStorage) GetSessionUserID(ctx context.Context, jti string) (string, error) {
	args := m.Called(jti)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) DeleteSession(ctx context.Context, jti string) error {
	args := m.Called(jti)
	return args.Error(0)
}

func (m *MockStorage) IsUserBanned(ctx context.Context, userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) BanUser(ctx context.Context, userID string, d time.Duration) error {
	args := m.Called(userID, d)
	return args.Error(0)
}

func (m *MockStorage) UnbanUser(ctx context.Context, userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

// Presence
func (m *MockStorage) SetLastSeen(ctx context.Context, userID string, at time.Time) error {
	args := m.Called(userID, at)
	return args.Error(0)
}

func (m *MockStorage) GetLastSeen(ctx context.Context, userIDs []string) (map[string]time.Time, error) {
	args := m.Called(userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]time.Time), args.Error(1)
}

// Match events
func (m *MockStorage) PublishMatchEvent(ctx context.Context, ev models.MatchEvent) error {
	args := m.Called(ev)
	return args.Error(0)
}

func (m *MockStorage) SubscribeMatchEvents(ctx context.Context) (<-chan models.MatchEvent, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan models.MatchEvent), args.Error(1)
}

// Telegram link codes
func (m *MockStorage) CreateTelegramLinkCode(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	args := m.Called(userID, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ConsumeTelegramLinkCode(ctx context.Context, code string) (string, error) {
	args := m.Called(code)
	return args.String(0), args.Error(1)
}

// MockClient records every delivered event in a bounded queue.
type MockClient struct {
	connID string
	userID string
	queue  chan models.Event

	mu     sync.Mutex
	closed bool
}

var _ chathub.Client = (*MockClient)(nil)

func newMockClient(userID, connID string) *MockClient {
	return newMockClientWithBuffer(userID, connID, 32)
}

func newMockClientWithBuffer(userID, connID string, size int) *MockClient {
	return &MockClient{
		connID: connID,
		userID: userID,
		queue:  make(chan models.Event, size),
	}
}

func (c *MockClient) GetConnID() string { return c.connID }
func (c *MockClient) GetUserID() string { return c.userID }

func (c *MockClient) Deliver(ev models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.queue <- ev:
		return true
	default:
		return false
	}
}

func (c *MockClient) Run() {}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Drain returns every queued event without waiting.
func (c *MockClient) Drain() []models.Event {
	var out []models.Event
	for {
		select {
		case ev := <-c.queue:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Named returns the queued events called name, discarding the rest.
func (c *MockClient) Named(name string) []models.Event {
	var out []models.Event
	for _, ev := range c.Drain() {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func decode[T any](ev models.Event) T {
	var v T
	if err := json.Unmarshal(ev.Data, &v); err != nil {
		panic(err)
	}
	return v
}

// MockPusher records offline pushes.
type MockPusher struct {
	mock.Mock
}

func (p *MockPusher) Push(ctx context.Context, user *models.User, n *models.Notification) error {
	args := p.Called(user, n)
	return args.Error(0)
}

func (c *MockClient) Pending() int { return len(c.queue) }
