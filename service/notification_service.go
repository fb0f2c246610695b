package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"challenge_hub/model"
	"challenge_hub/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier is the sink the friendship code reports events to. Delivery is
// best effort: callers log a failure and carry on.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, notifType string, senderID *int64, metadata *model.NotificationMetadata) error
}

type NotificationService struct {
	db          *gorm.DB
	templateSvc *NotificationTemplateService
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		db:          db,
		templateSvc: NewNotificationTemplateService(db),
	}
}

// Notify renders the template for notifType and stores the notification.
// The sender's pseudo is available to templates as {{sender_pseudo}}.
func (s *NotificationService) Notify(ctx context.Context, recipientID int64, notifType string, senderID *int64, metadata *model.NotificationMetadata) error {
	vars := map[string]string{}
	if senderID != nil {
		vars["sender_id"] = strconv.FormatInt(*senderID, 10)
		vars["sender_pseudo"] = "Someone"

		var sender model.User
		err := s.db.WithContext(ctx).Select("id", "pseudo").Where("id = ?", *senderID).First(&sender).Error
		if err == nil {
			vars["sender_pseudo"] = sender.Pseudo
			if metadata != nil {
				metadata.SenderPseudo = sender.Pseudo
			}
		}
	}

	var meta map[string]interface{}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("invalid metadata: %w", err)
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			return fmt.Errorf("invalid metadata: %w", err)
		}
	}

	_, err := s.CreateNotificationWithTemplate(ctx, recipientID, senderID, notifType, vars, meta)
	return err
}

// CreateNotification stores a notification as given.
func (s *NotificationService) CreateNotification(ctx context.Context, userID int64, senderID *int64, notifType, title string, content *string, metadata map[string]interface{}, priority int, expiresAt *time.Time) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:           userID,
		SenderID:         senderID,
		NotificationType: notifType,
		Title:            title,
		Content:          content,
		Priority:         priority,
		ExpiresAt:        expiresAt,
	}

	if metadata != nil {
		metadataBytes, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("invalid metadata: %w", err)
		}
		notification.Metadata = metadataBytes
	}

	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return notification, nil
}

// CreateNotificationWithTemplate renders the active template for notifType.
// Without a template the type itself becomes the title.
func (s *NotificationService) CreateNotificationWithTemplate(ctx context.Context, userID int64, senderID *int64, notifType string, templateVars map[string]string, metadata map[string]interface{}) (*model.Notification, error) {
	template, err := s.templateSvc.GetTemplate(ctx, notifType)
	if err != nil {
		return s.CreateNotification(ctx, userID, senderID, notifType, notifType, nil, metadata, 0, nil)
	}

	title := s.templateSvc.RenderTemplate(template.Title, templateVars)
	var content *string
	if template.ContentTemplate != nil {
		rendered := s.templateSvc.RenderTemplate(*template.ContentTemplate, templateVars)
		content = &rendered
	}

	return s.CreateNotification(ctx, userID, senderID, notifType, title, content, metadata, template.Priority, nil)
}

// GetNotifications lists unexpired notifications, most important and newest first.
func (s *NotificationService) GetNotifications(ctx context.Context, userID int64, limit, offset int, unreadOnly bool) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	notifications := []model.Notification{}
	query := s.db.WithContext(ctx).Where("user_id = ? AND (expires_at IS NULL OR expires_at > ?)", userID, time.Now().UTC())
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	err := query.Order("priority DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	return notifications, nil
}

// GetNotificationDetail returns one notification and marks it read.
func (s *NotificationService) GetNotificationDetail(ctx context.Context, userID int64, notificationID uuid.UUID) (*model.Notification, error) {
	var notification model.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewAppError(utils.ErrCodeNotFound, "notification not found")
	}
	if err != nil {
		return nil, utils.WrapAppError(err, utils.ErrCodeStorageFailure, "failed to get notification")
	}

	if !notification.IsRead {
		now := time.Now().UTC()
		err := s.db.WithContext(ctx).Model(&model.Notification{}).
			Where("id = ?", notification.ID).
			Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
		if err != nil {
			// still return the content; the read flag is retried next time
			utils.Logger().Warnw("failed to mark notification read", "notification_id", notification.ID, "error", err)
			return &notification, nil
		}
		notification.IsRead = true
		notification.ReadAt = &now
	}

	return &notification, nil
}

// MarkAllAsRead marks every unread notification of userID as read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now().UTC(),
		}).Error
}

// GetUnreadCount counts unexpired unread notifications.
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ? AND (expires_at IS NULL OR expires_at > ?)", userID, false, time.Now().UTC()).
		Count(&count).Error
	return int(count), err
}

// GetLatestNotificationTime returns the creation time of the newest unexpired
// notification, or nil when there is none.
func (s *NotificationService) GetLatestNotificationTime(ctx context.Context, userID int64) (*time.Time, error) {
	var latest model.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND (expires_at IS NULL OR expires_at > ?)", userID, time.Now().UTC()).
		Order("created_at DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &latest.CreatedAt, nil
}

// DeleteNotification removes one of userID's notifications.
func (s *NotificationService) DeleteNotification(ctx context.Context, userID int64, notificationID uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&model.Notification{})
	if result.Error != nil {
		return utils.WrapAppError(result.Error, utils.ErrCodeStorageFailure, "failed to delete notification")
	}
	if result.RowsAffected == 0 {
		return utils.NewAppError(utils.ErrCodeNotFound, "notification not found")
	}
	return nil
}
