package service

import (
	"context"
	"errors"
	"time"

	"challenge_hub/model"
	"challenge_hub/repository"
	"challenge_hub/utils"
)

type FriendshipService struct {
	users       repository.UserRepository
	friendships repository.FriendshipRepository
	notifier    Notifier
	locker      PairLocker
	now         func() time.Time
}

func NewFriendshipService(users repository.UserRepository, friendships repository.FriendshipRepository, notifier Notifier) *FriendshipService {
	return &FriendshipService{
		users:       users,
		friendships: friendships,
		notifier:    notifier,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetPairLocker enables per-pair serialization of SendRequest.
func (s *FriendshipService) SetPairLocker(locker PairLocker) {
	s.locker = locker
}

// GetStatus returns the pending or accepted edge between x and y, or nil.
// Rejected edges are never returned.
func (s *FriendshipService) GetStatus(ctx context.Context, x, y int64) (*model.Friendship, error) {
	if err := validateIDs(x, y); err != nil {
		return nil, err
	}

	f, err := s.friendships.FindActive(ctx, x, y)
	if err != nil {
		return nil, storageFailure("get friendship status", err, "user_x", x, "user_y", y)
	}
	return f, nil
}

// GetRequest loads an edge by id.
func (s *FriendshipService) GetRequest(ctx context.Context, id int64) (*model.Friendship, error) {
	if id <= 0 {
		return nil, utils.NewAppError(utils.ErrCodeInvalidArgument, "invalid friend request id")
	}

	f, err := s.friendships.GetByID(ctx, id)
	if err != nil {
		return nil, storageFailure("get friend request", err, "friendship_id", id)
	}
	if f == nil {
		return nil, utils.NewAppError(utils.ErrCodeNotFound, "friend request not found")
	}
	return f, nil
}

// SendRequest creates a pending edge from requesterID to targetID and
// notifies the target.
func (s *FriendshipService) SendRequest(ctx context.Context, requesterID, targetID int64) (f *model.Friendship, err error) {
	defer func() { observe("send_request", err) }()

	if err := validateIDs(requesterID, targetID); err != nil {
		return nil, err
	}
	if requesterID == targetID {
		return nil, utils.NewAppError(utils.ErrCodeInvalidArgument, "you cannot send a friend request to yourself")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, storageFailure("load friend request target", err, "requester_id", requesterID, "target_id", targetID)
	}
	if target == nil || !target.IsActive() {
		return nil, utils.NewAppError(utils.ErrCodeNotFound, "user not found")
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, requesterID, targetID)
		if err != nil {
			return nil, storageFailure("lock friendship pair", err, "requester_id", requesterID, "target_id", targetID)
		}
		defer unlock()
	}

	existing, err := s.friendships.FindActive(ctx, requesterID, targetID)
	if err != nil {
		return nil, storageFailure("check existing friendship", err, "requester_id", requesterID, "target_id", targetID)
	}
	if existing != nil {
		return nil, conflictFor(existing, requesterID)
	}

	f = model.NewFriendRequest(requesterID, targetID, s.now())
	if err := s.friendships.Create(ctx, f); err != nil {
		// a concurrent request for the same pair won the unique index
		if existing, findErr := s.friendships.FindActive(ctx, requesterID, targetID); findErr == nil && existing != nil {
			return nil, conflictFor(existing, requesterID)
		}
		return nil, storageFailure("create friend request", err, "requester_id", requesterID, "target_id", targetID)
	}

	s.notify(ctx, targetID, model.NotificationFriendRequest, requesterID, f.ID)
	return f, nil
}

// Accept turns the pending request sent by requesterID to recipientID into a
// friendship and notifies the requester.
func (s *FriendshipService) Accept(ctx context.Context, recipientID, requesterID int64) (f *model.Friendship, err error) {
	defer func() { observe("accept", err) }()

	f, err = s.respond(ctx, "accept friend request", recipientID, requesterID, model.FriendshipAccepted)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, requesterID, model.NotificationFriendAccepted, recipientID, f.ID)
	return f, nil
}

// Reject marks the pending request as rejected. The requester is not told.
func (s *FriendshipService) Reject(ctx context.Context, recipientID, requesterID int64) (f *model.Friendship, err error) {
	defer func() { observe("reject", err) }()

	return s.respond(ctx, "reject friend request", recipientID, requesterID, model.FriendshipRejected)
}

func (s *FriendshipService) respond(ctx context.Context, op string, recipientID, requesterID int64, status model.FriendshipStatus) (*model.Friendship, error) {
	if err := validateIDs(recipientID, requesterID); err != nil {
		return nil, err
	}
	if recipientID == requesterID {
		return nil, utils.NewAppError(utils.ErrCodeInvalidArgument, "you cannot answer your own friend request")
	}

	f, err := s.friendships.RespondPending(ctx, requesterID, recipientID, status, s.now())
	if err != nil {
		return nil, storageFailure(op, err, "recipient_id", recipientID, "requester_id", requesterID)
	}
	if f == nil {
		return nil, utils.NewAppError(utils.ErrCodeNotFound, "friend request not found")
	}
	return f, nil
}

// CancelRequest withdraws a pending request the caller sent.
func (s *FriendshipService) CancelRequest(ctx context.Context, requesterID, targetID int64) (err error) {
	defer func() { observe("cancel_request", err) }()

	if err := validateIDs(requesterID, targetID); err != nil {
		return err
	}

	deleted, err := s.friendships.DeletePending(ctx, requesterID, targetID)
	if err != nil {
		return storageFailure("cancel friend request", err, "requester_id", requesterID, "target_id", targetID)
	}
	if deleted == 0 {
		return utils.NewAppError(utils.ErrCodeNotFound, "friend request not found")
	}
	return nil
}

// Remove ends the friendship between userID and friendID and notifies the
// friend. Every accepted row for the pair is deleted in one statement.
func (s *FriendshipService) Remove(ctx context.Context, userID, friendID int64) (err error) {
	defer func() { observe("remove", err) }()

	if err := validateIDs(userID, friendID); err != nil {
		return err
	}
	if userID == friendID {
		return utils.NewAppError(utils.ErrCodeInvalidArgument, "you cannot remove yourself")
	}

	deleted, err := s.friendships.DeleteAccepted(ctx, userID, friendID)
	if err != nil {
		return storageFailure("remove friend", err, "user_id", userID, "friend_id", friendID)
	}
	if deleted == 0 {
		return utils.NewAppError(utils.ErrCodeNotFound, "friendship not found")
	}
	if deleted > 1 {
		utils.Logger().Warnw("removed duplicate accepted rows", "user_id", userID, "friend_id", friendID, "rows", deleted)
	}

	s.notify(ctx, friendID, model.NotificationFriendRemoved, userID, 0)
	return nil
}

// ListFriends returns userID's friends, most recently active first.
func (s *FriendshipService) ListFriends(ctx context.Context, userID int64) ([]model.User, error) {
	if err := validateIDs(userID); err != nil {
		return nil, err
	}

	friends, err := s.friendships.ListFriends(ctx, userID)
	if err != nil {
		return nil, storageFailure("list friends", err, "user_id", userID)
	}
	if friends == nil {
		friends = []model.User{}
	}
	return friends, nil
}

// ListPendingReceived returns requests addressed to userID, newest first.
func (s *FriendshipService) ListPendingReceived(ctx context.Context, userID int64) ([]model.Friendship, error) {
	if err := validateIDs(userID); err != nil {
		return nil, err
	}

	requests, err := s.friendships.ListPendingReceived(ctx, userID)
	if err != nil {
		return nil, storageFailure("list received friend requests", err, "user_id", userID)
	}
	if requests == nil {
		requests = []model.Friendship{}
	}
	return requests, nil
}

// ListPendingSent returns requests sent by userID, newest first.
func (s *FriendshipService) ListPendingSent(ctx context.Context, userID int64) ([]model.Friendship, error) {
	if err := validateIDs(userID); err != nil {
		return nil, err
	}

	requests, err := s.friendships.ListPendingSent(ctx, userID)
	if err != nil {
		return nil, storageFailure("list sent friend requests", err, "user_id", userID)
	}
	if requests == nil {
		requests = []model.Friendship{}
	}
	return requests, nil
}

func (s *FriendshipService) notify(ctx context.Context, recipientID int64, notifType string, senderID, friendshipID int64) {
	if s.notifier == nil {
		return
	}

	metadata := &model.NotificationMetadata{SenderID: &senderID}
	if friendshipID > 0 {
		metadata.FriendshipID = &friendshipID
	}

	if err := s.notifier.Notify(ctx, recipientID, notifType, &senderID, metadata); err != nil {
		utils.Logger().Warnw("friendship notification failed",
			"type", notifType, "recipient_id", recipientID, "sender_id", senderID, "error", err)
	}
}

func conflictFor(existing *model.Friendship, requesterID int64) error {
	switch {
	case existing.Status == model.FriendshipAccepted:
		return utils.NewAppError(utils.ErrCodeAlreadyFriends, "you are already friends")
	case existing.RequesterID == requesterID:
		return utils.NewAppError(utils.ErrCodeRequestAlreadySentByYou, "you already sent a friend request to this user")
	default:
		return utils.NewAppError(utils.ErrCodeRequestAlreadySentByThem, "this user already sent you a friend request")
	}
}

func validateIDs(ids ...int64) error {
	for _, id := range ids {
		if id <= 0 {
			return utils.NewAppError(utils.ErrCodeInvalidArgument, "invalid user id")
		}
	}
	return nil
}

func storageFailure(op string, err error, keysAndValues ...interface{}) error {
	fields := append([]interface{}{"op", op, "error", err}, keysAndValues...)
	utils.Logger().Errorw("friendship storage failure", fields...)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return utils.WrapAppError(err, utils.ErrCodeStorageFailure, "request cancelled")
	}
	return utils.WrapAppError(err, utils.ErrCodeStorageFailure, "failed to "+op)
}
