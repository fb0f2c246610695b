package handler

import (
	"strconv"

	"challenge_hub/middleware"
	"challenge_hub/model"
	"challenge_hub/service"
	"challenge_hub/utils"

	"github.com/gin-gonic/gin"
)

type FriendshipHandler struct {
	friendSvc *service.FriendshipService
}

func NewFriendshipHandler(friendSvc *service.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendSvc: friendSvc}
}

// RegisterRoutes mounts the friend API on an authenticated group. The
// limiter only guards request creation.
func (h *FriendshipHandler) RegisterRoutes(rg *gin.RouterGroup, requestLimiter gin.HandlerFunc) {
	rg.POST("/friends/requests", requestLimiter, h.SendRequest)
	rg.GET("/friends/requests", h.ListRequests)
	rg.POST("/friends/requests/:id/accept", h.AcceptRequest)
	rg.POST("/friends/requests/:id/reject", h.RejectRequest)
	rg.DELETE("/friends/requests/:id", h.CancelRequest)
	rg.GET("/friends", h.ListFriends)
	rg.GET("/friends/status/:userId", h.GetStatus)
	rg.DELETE("/friends/:userId", h.RemoveFriend)
}

type sendRequestBody struct {
	TargetID int64 `json:"target_id" binding:"required"`
}

// SendRequest POST /friends/requests
func (h *FriendshipHandler) SendRequest(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	var req sendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "target_id is required")
		return
	}

	friendship, err := h.friendSvc.SendRequest(c.Request.Context(), userID, req.TargetID)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.Created(c, "friend request sent", gin.H{"friendship": friendship})
}

// AcceptRequest POST /friends/requests/:id/accept
func (h *FriendshipHandler) AcceptRequest(c *gin.Context) {
	userID, request, ok := h.loadReceivedRequest(c)
	if !ok {
		return
	}

	friendship, err := h.friendSvc.Accept(c.Request.Context(), userID, request.RequesterID)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.SuccessWithMessage(c, "friend request accepted", gin.H{"friendship": friendship})
}

// RejectRequest POST /friends/requests/:id/reject
func (h *FriendshipHandler) RejectRequest(c *gin.Context) {
	userID, request, ok := h.loadReceivedRequest(c)
	if !ok {
		return
	}

	friendship, err := h.friendSvc.Reject(c.Request.Context(), userID, request.RequesterID)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.SuccessWithMessage(c, "friend request rejected", gin.H{"friendship": friendship})
}

// CancelRequest DELETE /friends/requests/:id
func (h *FriendshipHandler) CancelRequest(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	request, ok := h.loadRequest(c)
	if !ok {
		return
	}
	if request.Status != model.FriendshipPending || request.RequesterID != userID {
		utils.NotFound(c, "friend request not found")
		return
	}

	if err := h.friendSvc.CancelRequest(c.Request.Context(), userID, request.AddresseeID()); err != nil {
		utils.Fail(c, err)
		return
	}

	utils.SuccessWithMessage(c, "friend request cancelled", nil)
}

// RemoveFriend DELETE /friends/:userId
func (h *FriendshipHandler) RemoveFriend(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	friendID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.friendSvc.Remove(c.Request.Context(), userID, friendID); err != nil {
		utils.Fail(c, err)
		return
	}

	utils.SuccessWithMessage(c, "friend removed", nil)
}

// ListFriends GET /friends
func (h *FriendshipHandler) ListFriends(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	friends, err := h.friendSvc.ListFriends(c.Request.Context(), userID)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"friends": friends})
}

// ListRequests GET /friends/requests?direction=received|sent
func (h *FriendshipHandler) ListRequests(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	var (
		requests []model.Friendship
		err      error
	)
	direction := c.DefaultQuery("direction", "received")
	switch direction {
	case "received":
		requests, err = h.friendSvc.ListPendingReceived(c.Request.Context(), userID)
	case "sent":
		requests, err = h.friendSvc.ListPendingSent(c.Request.Context(), userID)
	default:
		utils.BadRequest(c, "direction must be received or sent")
		return
	}
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"direction": direction, "requests": requests})
}

// GetStatus GET /friends/status/:userId
func (h *FriendshipHandler) GetStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	otherID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	friendship, err := h.friendSvc.GetStatus(c.Request.Context(), userID, otherID)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"friendship": friendship})
}

// loadReceivedRequest resolves :id to a pending request addressed to the
// caller. Anything else is reported as not found.
func (h *FriendshipHandler) loadReceivedRequest(c *gin.Context) (int64, *model.Friendship, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return 0, nil, false
	}

	request, ok := h.loadRequest(c)
	if !ok {
		return 0, nil, false
	}
	if request.Status != model.FriendshipPending || !request.Involves(userID) || request.RequesterID == userID {
		utils.NotFound(c, "friend request not found")
		return 0, nil, false
	}
	return userID, request, true
}

func (h *FriendshipHandler) loadRequest(c *gin.Context) (*model.Friendship, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	request, err := h.friendSvc.GetRequest(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, err)
		return nil, false
	}
	return request, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
