package model

import "time"

const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User is owned by the auth side; the friendship code only reads it.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Pseudo       string    `json:"pseudo" gorm:"type:varchar(50);not null;uniqueIndex"`
	Status       string    `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	LastActiveAt time.Time `json:"last_active_at" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
