package repository

import (
	"context"
	"errors"
	"time"

	"challenge_hub/model"
)

// ErrDuplicateActivePair is returned by FriendshipRepository.Create when the
// pair already has a pending or accepted edge.
var ErrDuplicateActivePair = errors.New("active friendship already exists for pair")

// Lookups return (nil, nil) when nothing matches.

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	TouchActivity(ctx context.Context, id int64, at time.Time) error
}

type FriendshipRepository interface {
	Create(ctx context.Context, f *model.Friendship) error
	GetByID(ctx context.Context, id int64) (*model.Friendship, error)
	// FindActive returns the pending or accepted edge between x and y.
	FindActive(ctx context.Context, x, y int64) (*model.Friendship, error)
	// RespondPending moves the pending edge sent by requesterID to recipientID
	// into status. Returns nil when no such pending edge exists.
	RespondPending(ctx context.Context, requesterID, recipientID int64, status model.FriendshipStatus, at time.Time) (*model.Friendship, error)
	// DeleteAccepted removes every accepted row between x and y, in either
	// direction, and reports how many were removed.
	DeleteAccepted(ctx context.Context, x, y int64) (int64, error)
	// DeletePending removes the pending edge sent by requesterID to targetID.
	DeletePending(ctx context.Context, requesterID, targetID int64) (int64, error)
	ListFriends(ctx context.Context, userID int64) ([]model.User, error)
	ListPendingReceived(ctx context.Context, userID int64) ([]model.Friendship, error)
	ListPendingSent(ctx context.Context, userID int64) ([]model.Friendship, error)
}
