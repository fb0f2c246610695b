package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationTemplate renders title and content for a notification type.
// Placeholders look like {{sender_pseudo}}.
type NotificationTemplate struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Type            string    `json:"type" gorm:"type:varchar(50);not null;uniqueIndex"`
	Title           string    `json:"title" gorm:"type:varchar(200);not null"`
	ContentTemplate *string   `json:"content_template,omitempty" gorm:"type:text"`
	Priority        int       `json:"priority" gorm:"not null;default:0"`
	IsActive        bool      `json:"is_active" gorm:"not null"`
	Description     *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (NotificationTemplate) TableName() string {
	return "notification_templates"
}

func (t *NotificationTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
