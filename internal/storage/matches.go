package storage

import (
	"context"
	"errors"
	"time"

	"heartline/backend/internal/logger"
	"heartline/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) GetMatchByID(ctx context.Context, matchID string) (*models.Match, error) {
	var match models.Match

	err := s.DB.WithContext(ctx).Where("id = ?", matchID).First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Error().Err(err).Str("match_id", matchID).Msg("failed to load match")
		return nil, err
	}
	return &match, nil
}

// UnmatchMatch moves an ACTIVE match to UNMATCHED. Unmatching twice is not
// an error.
func (s *Service) UnmatchMatch(ctx context.Context, matchID string) error {
	res := s.DB.WithContext(ctx).Model(&models.Match{}).
		Where("id = ? AND status = ?", matchID, models.MatchActive).
		Updates(map[string]interface{}{
			"status":       models.MatchUnmatched,
			"unmatched_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetMatchByID(ctx, matchID); err != nil {
			return err
		}
	}
	return nil
}
