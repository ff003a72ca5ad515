package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"heartline/backend/internal/logger"
	"heartline/backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MatchEventsChannel carries models.MatchEvent JSON payloads.
const MatchEventsChannel = "match:events"

func sessionKey(jti string) string     { return "session:" + jti }
func banKey(userID string) string      { return "ban:" + userID }
func lastSeenKey(userID string) string { return "last_seen:" + userID }
func linkCodeKey(code string) string   { return "tg_link:" + code }

func (s *Service) SaveSession(ctx context.Context, jti, userID string, ttl time.Duration) error {
	return s.Redis.Set(ctx, sessionKey(jti), userID, ttl).Err()
}

func (s *Service) GetSessionUserID(ctx context.Context, jti string) (string, error) {
	userID, err := s.Redis.Get(ctx, sessionKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Service) DeleteSession(ctx context.Context, jti string) error {
	return s.Redis.Del(ctx, sessionKey(jti)).Err()
}

// IsUserBanned reports whether a ban flag is set for the user.
func (s *Service) IsUserBanned(ctx context.Context, userID string) (bool, error) {
	status, err := s.Redis.Get(ctx, banKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// BanUser bans for d, or indefinitely when d is 0.
func (s *Service) BanUser(ctx context.Context, userID string, d time.Duration) error {
	return s.Redis.Set(ctx, banKey(userID), "banned", d).Err()
}

func (s *Service) UnbanUser(ctx context.Context, userID string) error {
	return s.Redis.Del(ctx, banKey(userID)).Err()
}

func (s *Service) SetLastSeen(ctx context.Context, userID string, at time.Time) error {
	return s.Redis.Set(ctx, lastSeenKey(userID), at.Unix(), 0).Err()
}

// GetLastSeen returns the recorded last-seen times; users without a record
// are absent from the map.
func (s *Service) GetLastSeen(ctx context.Context, userIDs []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = lastSeenKey(id)
	}

	values, err := s.Redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		sec, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			continue
		}
		out[userIDs[i]] = time.Unix(sec, 0).UTC()
	}
	return out, nil
}

// PublishMatchEvent announces a match state change to every server.
func (s *Service) PublishMatchEvent(ctx context.Context, ev models.MatchEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, MatchEventsChannel, payload).Err()
}

func (s *Service) SubscribeMatchEvents(ctx context.Context) (<-chan models.MatchEvent, error) {
	pubsub := s.Redis.Subscribe(ctx, MatchEventsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan models.MatchEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.MatchEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					logger.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed match event")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// CreateTelegramLinkCode issues a one-time code the user sends to the bot
// as "/start <code>".
func (s *Service) CreateTelegramLinkCode(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	code := uuid.NewString()
	if err := s.Redis.Set(ctx, linkCodeKey(code), userID, ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

func (s *Service) ConsumeTelegramLinkCode(ctx context.Context, code string) (string, error) {
	userID, err := s.Redis.GetDel(ctx, linkCodeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
