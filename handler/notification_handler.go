package handler

import (
	"strconv"

	"challenge_hub/middleware"
	"challenge_hub/service"
	"challenge_hub/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notifSvc *service.NotificationService
}

func NewNotificationHandler(notifSvc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc}
}

// GetNotifications GET /notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	unreadOnly := c.DefaultQuery("unread_only", "false") == "true"

	ctx := c.Request.Context()
	notifications, err := h.notifSvc.GetNotifications(ctx, userID, limit, offset, unreadOnly)
	if err != nil {
		utils.Logger().Errorw("failed to list notifications", "user_id", userID, "error", err)
		utils.InternalServerError(c, "failed to get notifications")
		return
	}

	// the summary is informative only
	unreadCount, err := h.notifSvc.GetUnreadCount(ctx, userID)
	if err != nil {
		utils.Logger().Warnw("failed to count unread notifications", "user_id", userID, "error", err)
	}
	latest, err := h.notifSvc.GetLatestNotificationTime(ctx, userID)
	if err != nil {
		utils.Logger().Warnw("failed to get latest notification time", "user_id", userID, "error", err)
	}

	utils.SuccessResponse(c, gin.H{
		"notifications":     notifications,
		"unread_count":      unreadCount,
		"latest_notif_time": latest,
	})
}

// GetNotificationDetail GET /notifications/:id, marks it read.
func (h *NotificationHandler) GetNotificationDetail(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid notification id")
		return
	}

	notification, err := h.notifSvc.GetNotificationDetail(c.Request.Context(), userID, notificationID)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"notification": notification})
}

// MarkAllAsRead POST /notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.notifSvc.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		utils.Logger().Errorw("failed to mark notifications read", "user_id", userID, "error", err)
		utils.InternalServerError(c, "failed to mark notifications as read")
		return
	}

	utils.SuccessWithMessage(c, "all notifications marked as read", nil)
}

// DeleteNotification POST /notifications/:id/delete
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid notification id")
		return
	}

	if err := h.notifSvc.DeleteNotification(c.Request.Context(), userID, notificationID); err != nil {
		utils.Fail(c, err)
		return
	}

	utils.SuccessWithMessage(c, "notification deleted", nil)
}

func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.GetNotifications)
	rg.GET("/notifications/:id", h.GetNotificationDetail)
	rg.POST("/notifications/read-all", h.MarkAllAsRead)
	rg.POST("/notifications/:id/delete", h.DeleteNotification)
}
