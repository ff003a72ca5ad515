package storage

import (
	"context"
	"errors"
	"time"

	"heartline/backend/internal/logger"
	"heartline/backend/internal/models"

	"gorm.io/gorm"
)

// SaveMessage inserts the message. ID and CreatedAt are filled in by the
// model hook and gorm.
func (s *Service) SaveMessage(ctx context.Context, msg *models.Message) error {
	msg.ReadAt = nil
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		logger.Error().Err(err).Str("match_id", msg.MatchID).Msg("failed to save message")
		return err
	}
	return nil
}

func (s *Service) GetMessageByID(ctx context.Context, messageID string) (*models.Message, error) {
	var msg models.Message

	err := s.DB.WithContext(ctx).Where("id = ?", messageID).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) MarkMessageRead(ctx context.Context, messageID string, readAt time.Time) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND read_at IS NULL", messageID).
		Update("read_at", readAt)
	if res.Error != nil {
		logger.Error().Err(res.Error).Str("message_id", messageID).Msg("failed to mark message read")
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GetChatHistory returns up to limit messages of a match created strictly
// before the given time, newest first. A zero before means "now".
func (s *Service) GetChatHistory(ctx context.Context, matchID string, before time.Time, limit int) ([]models.Message, error) {
	if before.IsZero() {
		before = time.Now().UTC().Add(time.Second)
	}

	var history []models.Message
	err := s.DB.WithContext(ctx).
		Where("match_id = ? AND created_at < ?", matchID, before).
		Order("created_at desc").
		Limit(limit).
		Find(&history).Error
	if err != nil {
		logger.Error().Err(err).Str("match_id", matchID).Msg("failed to get chat history")
		return nil, err
	}
	return history, nil
}
