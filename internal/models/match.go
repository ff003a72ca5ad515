package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchStatus string

const (
	MatchActive    MatchStatus = "ACTIVE"
	MatchUnmatched MatchStatus = "UNMATCHED"
)

// Match is a pairing of exactly two users. It is created elsewhere when a
// mutual like happens and only ever moves from ACTIVE to UNMATCHED.
type Match struct {
	ID      string      `gorm:"primaryKey;size:36" json:"id"`
	User1ID string      `gorm:"size:36;not null;index" json:"user1Id"`
	User2ID string      `gorm:"size:36;not null;index" json:"user2Id"`
	Status  MatchStatus `gorm:"size:16;not null;default:ACTIVE;index" json:"status"`

	CreatedAt   time.Time  `json:"createdAt"`
	UnmatchedAt *time.Time `json:"unmatchedAt,omitempty"`
}

func (m *Match) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

func (m *Match) IsActive() bool {
	return m.Status == MatchActive
}

func (m *Match) HasParticipant(userID string) bool {
	return userID != "" && (m.User1ID == userID || m.User2ID == userID)
}

// OtherParticipant returns the partner of userID, or false if userID is not
// part of the match.
func (m *Match) OtherParticipant(userID string) (string, bool) {
	switch userID {
	case "":
		return "", false
	case m.User1ID:
		return m.User2ID, true
	case m.User2ID:
		return m.User1ID, true
	}
	return "", false
}

// MatchEvent is published on the match event channel when a match changes
// state outside this process.
type MatchEvent struct {
	MatchID string      `json:"matchId"`
	Status  MatchStatus `json:"status"`
}
