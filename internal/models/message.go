package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageType string

const (
	MessageText  MessageType = "TEXT"
	MessageImage MessageType = "IMAGE"
	MessageFile  MessageType = "FILE"
)

// Message is a chat message inside a match. Everything but ReadAt is
// immutable after creation; ReadAt moves from nil to a timestamp once.
type Message struct {
	ID       string      `gorm:"primaryKey;size:36" json:"id"`
	MatchID  string      `gorm:"size:36;not null;index:idx_match_created,priority:1" json:"matchId"`
	SenderID string      `gorm:"size:36;not null" json:"senderId"`
	Content  string      `gorm:"type:text;not null" json:"content"`
	Type     MessageType `gorm:"size:8;not null" json:"type"`

	FileURL  string `json:"fileUrl,omitempty"`
	FileKey  string `json:"fileKey,omitempty"`
	FileName string `json:"fileName,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
	FileType string `json:"fileType,omitempty"`

	CreatedAt time.Time  `gorm:"index:idx_match_created,priority:2" json:"createdAt"`
	ReadAt    *time.Time `json:"readAt"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}

// ClassifyMessageType derives the message type from an attachment MIME type.
// No attachment means TEXT.
func ClassifyMessageType(att *Attachment) MessageType {
	if att == nil {
		return MessageText
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(att.Type)), "image/") {
		return MessageImage
	}
	return MessageFile
}

// Payload is the message:new wire form.
func (m *Message) Payload() MessagePayload {
	return MessagePayload{
		ID:        m.ID,
		MatchID:   m.MatchID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Type:      m.Type,
		FileURL:   m.FileURL,
		FileKey:   m.FileKey,
		FileName:  m.FileName,
		FileSize:  m.FileSize,
		FileType:  m.FileType,
		CreatedAt: m.CreatedAt,
		ReadAt:    m.ReadAt,
	}
}
