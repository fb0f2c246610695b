package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationFriendRequest  = "friend_request"
	NotificationFriendAccepted = "friend_accepted"
	NotificationFriendRemoved  = "friend_removed"
)

type Notification struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           int64           `json:"user_id" gorm:"not null;index"`
	SenderID         *int64          `json:"sender_id,omitempty"`
	NotificationType string          `json:"notification_type" gorm:"type:varchar(30);not null"`
	Title            string          `json:"title" gorm:"type:varchar(200);not null"`
	Content          *string         `json:"content,omitempty" gorm:"type:text"`
	Metadata         json.RawMessage `json:"metadata,omitempty" gorm:"type:jsonb"`
	IsRead           bool            `json:"is_read" gorm:"not null;default:false"`
	ReadAt           *time.Time      `json:"read_at,omitempty"`
	Priority         int             `json:"priority" gorm:"not null;default:0"`
	CreatedAt        time.Time       `json:"created_at" gorm:"autoCreateTime"`
	ExpiresAt        *time.Time      `json:"expires_at,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// NotificationMetadata is the structured payload attached to friendship notifications.
type NotificationMetadata struct {
	FriendshipID *int64 `json:"friendship_id,omitempty"`
	SenderID     *int64 `json:"sender_id,omitempty"`
	SenderPseudo string `json:"sender_pseudo,omitempty"`
	LinkURL      string `json:"link_url,omitempty"`
}
