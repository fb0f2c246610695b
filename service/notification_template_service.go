package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"challenge_hub/model"

	"gorm.io/gorm"
)

type NotificationTemplateService struct {
	db *gorm.DB
}

func NewNotificationTemplateService(db *gorm.DB) *NotificationTemplateService {
	return &NotificationTemplateService{db: db}
}

// GetTemplate returns the active template for notifType.
func (s *NotificationTemplateService) GetTemplate(ctx context.Context, notifType string) (*model.NotificationTemplate, error) {
	var template model.NotificationTemplate
	err := s.db.WithContext(ctx).Where("type = ? AND is_active = ?", notifType, true).First(&template).Error
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	return &template, nil
}

// RenderTemplate replaces every {{key}} with its value.
func (s *NotificationTemplateService) RenderTemplate(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// DefaultTemplates are the friendship templates seeded at startup.
func DefaultTemplates() []model.NotificationTemplate {
	return []model.NotificationTemplate{
		{
			Type:            model.NotificationFriendRequest,
			Title:           "New friend request",
			ContentTemplate: stringPtr("{{sender_pseudo}} wants to be your friend"),
			Priority:        1,
			IsActive:        true,
			Description:     stringPtr("sent to the addressee of a new friend request"),
		},
		{
			Type:            model.NotificationFriendAccepted,
			Title:           "Friend request accepted",
			ContentTemplate: stringPtr("{{sender_pseudo}} accepted your friend request"),
			Priority:        0,
			IsActive:        true,
			Description:     stringPtr("sent to the requester once the request is accepted"),
		},
		{
			Type:            model.NotificationFriendRemoved,
			Title:           "Removed from friend list",
			ContentTemplate: stringPtr("{{sender_pseudo}} removed you from their friend list"),
			Priority:        0,
			IsActive:        true,
			Description:     stringPtr("sent to the other party when a friendship ends"),
		},
	}
}

// InitDefaultTemplates inserts any missing default template. Existing rows
// are left alone so edits made in the database survive restarts.
func (s *NotificationTemplateService) InitDefaultTemplates(ctx context.Context) error {
	for _, template := range DefaultTemplates() {
		var existing model.NotificationTemplate
		err := s.db.WithContext(ctx).Where("type = ?", template.Type).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.db.WithContext(ctx).Create(&template).Error; err != nil {
				return fmt.Errorf("failed to create default template %s: %w", template.Type, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to check template %s: %w", template.Type, err)
		}
	}
	return nil
}

func stringPtr(s string) *string {
	return &s
}
