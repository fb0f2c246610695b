package model

import "time"

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// Friendship is one edge per unordered pair of users. UserAID is always the
// smaller id. An accepted edge is visible from both sides; rejected edges stay
// as history and are excluded from the active-pair unique index.
type Friendship struct {
	ID          int64            `json:"id" gorm:"primaryKey;autoIncrement"`
	UserAID     int64            `json:"user_a_id" gorm:"not null;index;uniqueIndex:idx_friendship_active_pair,where:status <> 'rejected'"`
	UserBID     int64            `json:"user_b_id" gorm:"not null;index;uniqueIndex:idx_friendship_active_pair,where:status <> 'rejected'"`
	RequesterID int64            `json:"requester_id" gorm:"not null"`
	Status      FriendshipStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	RequestedAt time.Time        `json:"requested_at" gorm:"not null"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

func (Friendship) TableName() string {
	return "friendships"
}

// OrderedPair returns the pair as stored: smaller id first.
func OrderedPair(x, y int64) (int64, int64) {
	if x > y {
		return y, x
	}
	return x, y
}

// NewFriendRequest builds a pending edge from requester to addressee.
func NewFriendRequest(requesterID, addresseeID int64, at time.Time) *Friendship {
	a, b := OrderedPair(requesterID, addresseeID)
	return &Friendship{
		UserAID:     a,
		UserBID:     b,
		RequesterID: requesterID,
		Status:      FriendshipPending,
		RequestedAt: at,
	}
}

// AddresseeID is the participant who did not send the request.
func (f *Friendship) AddresseeID() int64 {
	if f.RequesterID == f.UserAID {
		return f.UserBID
	}
	return f.UserAID
}

// OtherUser returns the participant that is not userID.
func (f *Friendship) OtherUser(userID int64) int64 {
	if f.UserAID == userID {
		return f.UserBID
	}
	return f.UserAID
}

func (f *Friendship) Involves(userID int64) bool {
	return f.UserAID == userID || f.UserBID == userID
}
