package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the slice of the profile record this service reads: identity,
// presence visibility, notification language and an optional linked
// Telegram chat.
type User struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	DisplayName string `gorm:"size:80" json:"displayName"`
	// ShowOnlineStatus is the opt-out for being observed online. Because of
	// the column default, a false value has to be written with an update.
	ShowOnlineStatus bool   `gorm:"not null;default:true" json:"showOnlineStatus"`
	Language         string `gorm:"size:8;not null;default:en" json:"language"`
	// TelegramChatID is 0 when no chat is linked.
	TelegramChatID int64 `gorm:"index" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate generates a UUID for the user if the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
