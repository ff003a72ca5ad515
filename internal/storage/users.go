package storage

import (
	"context"
	"errors"

	"heartline/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IsPresenceVisible reads the user's online-status opt-out flag.
func (s *Service) IsPresenceVisible(ctx context.Context, userID string) (bool, error) {
	var visible []bool

	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Limit(1).
		Pluck("show_online_status", &visible).Error
	if err != nil {
		return false, err
	}
	if len(visible) == 0 {
		return false, ErrNotFound
	}
	return visible[0], nil
}

func (s *Service) SetPresenceVisibility(ctx context.Context, userID string, visible bool) error {
	return s.updateUser(ctx, userID, "show_online_status", visible)
}

// LinkTelegram attaches a Telegram chat to the user. A chat can only be
// linked to one user, so it is detached from any previous owner first.
func (s *Service) LinkTelegram(ctx context.Context, userID string, chatID int64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("telegram_chat_id = ? AND id <> ?", chatID, userID).
			Update("telegram_chat_id", 0).Error; err != nil {
			return err
		}
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("telegram_chat_id", chatID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Service) UnlinkTelegram(ctx context.Context, chatID int64) error {
	return s.DB.WithContext(ctx).Model(&models.User{}).
		Where("telegram_chat_id = ?", chatID).
		Update("telegram_chat_id", 0).Error
}

func (s *Service) updateUser(ctx context.Context, userID, column string, value interface{}) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
