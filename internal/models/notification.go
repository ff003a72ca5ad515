package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const NotificationMessage NotificationType = "MESSAGE"

// Notification is a durable record for the recipient of a message. The read
// flag belongs to the recipient and changes independently of the message.
type Notification struct {
	ID        string           `gorm:"primaryKey;size:36" json:"id"`
	UserID    string           `gorm:"size:36;not null;index" json:"userId"`
	Title     string           `gorm:"size:120;not null" json:"title"`
	Content   string           `gorm:"type:text" json:"content"`
	Type      NotificationType `gorm:"size:30;not null;index" json:"type"`
	RelatedID string           `gorm:"size:36;index" json:"relatedId"`
	ActionURL string           `json:"actionUrl"`
	IsRead    bool             `gorm:"not null;default:false;index" json:"isRead"`
	CreatedAt time.Time        `gorm:"index" json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}
