package storage

import (
	"context"
	"errors"
	"time"

	"heartline/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups when the record does not exist.
var ErrNotFound = errors.New("record not found")

type MatchStore interface {
	GetMatchByID(ctx context.Context, matchID string) (*models.Match, error)
	UnmatchMatch(ctx context.Context, matchID string) error
}

type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	GetMessageByID(ctx context.Context, messageID string) (*models.Message, error)
	// MarkMessageRead sets read_at only if it is still NULL and reports
	// whether this call performed the transition.
	MarkMessageRead(ctx context.Context, messageID string, readAt time.Time) (bool, error)
	GetChatHistory(ctx context.Context, matchID string, before time.Time, limit int) ([]models.Message, error)
}

type NotificationStore interface {
	SaveNotification(ctx context.Context, n *models.Notification) error
	GetNotifications(ctx context.Context, userID string, page, limit int) ([]models.Notification, int64, error)
	GetUnreadNotificationCount(ctx context.Context, userID string) (int64, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
}

type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	IsPresenceVisible(ctx context.Context, userID string) (bool, error)
	SetPresenceVisibility(ctx context.Context, userID string, visible bool) error
	LinkTelegram(ctx context.Context, userID string, chatID int64) error
	UnlinkTelegram(ctx context.Context, chatID int64) error
}

// SessionStore backs connection authentication.
type SessionStore interface {
	SaveSession(ctx context.Context, jti, userID string, ttl time.Duration) error
	GetSessionUserID(ctx context.Context, jti string) (string, error)
	DeleteSession(ctx context.Context, jti string) error
	IsUserBanned(ctx context.Context, userID string) (bool, error)
	BanUser(ctx context.Context, userID string, d time.Duration) error
	UnbanUser(ctx context.Context, userID string) error
}

type PresenceStore interface {
	SetLastSeen(ctx context.Context, userID string, at time.Time) error
	GetLastSeen(ctx context.Context, userIDs []string) (map[string]time.Time, error)
}

type MatchEventBus interface {
	PublishMatchEvent(ctx context.Context, ev models.MatchEvent) error
	// SubscribeMatchEvents delivers events until ctx is cancelled, then
	// closes the channel.
	SubscribeMatchEvents(ctx context.Context) (<-chan models.MatchEvent, error)
}

type LinkCodeStore interface {
	CreateTelegramLinkCode(ctx context.Context, userID string, ttl time.Duration) (string, error)
	ConsumeTelegramLinkCode(ctx context.Context, code string) (string, error)
}

// Storage is everything the server needs from PostgreSQL and Redis.
type Storage interface {
	MatchStore
	MessageStore
	NotificationStore
	UserStore
	SessionStore
	PresenceStore
	MatchEventBus
	LinkCodeStore
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Migrate creates or updates the tables this service owns or reads.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Match{},
		&models.Message{},
		&models.Notification{},
	)
}
