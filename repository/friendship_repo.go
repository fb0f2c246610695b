package repository

import (
	"context"
	"errors"
	"time"

	"challenge_hub/model"

	"gorm.io/gorm"
)

const pairCondition = "((user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?))"

type FriendshipRepo struct {
	db *gorm.DB
}

func NewFriendshipRepo(db *gorm.DB) *FriendshipRepo {
	return &FriendshipRepo{db: db}
}

func (r *FriendshipRepo) Create(ctx context.Context, f *model.Friendship) error {
	err := r.db.WithContext(ctx).Create(f).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateActivePair
	}
	return err
}

func (r *FriendshipRepo) GetByID(ctx context.Context, id int64) (*model.Friendship, error) {
	var f model.Friendship
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FriendshipRepo) FindActive(ctx context.Context, x, y int64) (*model.Friendship, error) {
	var f model.Friendship
	err := r.db.WithContext(ctx).
		Where(pairCondition, x, y, y, x).
		Where("status <> ?", model.FriendshipRejected).
		Order("id ASC").
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FriendshipRepo) RespondPending(ctx context.Context, requesterID, recipientID int64, status model.FriendshipStatus, at time.Time) (*model.Friendship, error) {
	var responded *model.Friendship

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f model.Friendship
		err := tx.Where(pairCondition, requesterID, recipientID, recipientID, requesterID).
			Where("requester_id = ? AND status = ?", requesterID, model.FriendshipPending).
			First(&f).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		// the status guard makes a concurrent second response a no-op
		result := tx.Model(&model.Friendship{}).
			Where("id = ? AND status = ?", f.ID, model.FriendshipPending).
			Updates(map[string]interface{}{
				"status":       status,
				"responded_at": at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		f.Status = status
		f.RespondedAt = &at
		responded = &f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responded, nil
}

func (r *FriendshipRepo) DeleteAccepted(ctx context.Context, x, y int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where(pairCondition, x, y, y, x).
		Where("status = ?", model.FriendshipAccepted).
		Delete(&model.Friendship{})
	return result.RowsAffected, result.Error
}

func (r *FriendshipRepo) DeletePending(ctx context.Context, requesterID, targetID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where(pairCondition, requesterID, targetID, targetID, requesterID).
		Where("requester_id = ? AND status = ?", requesterID, model.FriendshipPending).
		Delete(&model.Friendship{})
	return result.RowsAffected, result.Error
}

// ListFriends returns accepted counterparts, most recently active first.
func (r *FriendshipRepo) ListFriends(ctx context.Context, userID int64) ([]model.User, error) {
	var friends []model.User
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("users.*").
		Joins("JOIN friendships f ON ((f.user_a_id = users.id AND f.user_b_id = ?) OR (f.user_b_id = users.id AND f.user_a_id = ?))", userID, userID).
		Where("f.status = ?", model.FriendshipAccepted).
		Order("users.last_active_at DESC, users.id ASC").
		Find(&friends).Error
	return friends, err
}

func (r *FriendshipRepo) ListPendingReceived(ctx context.Context, userID int64) ([]model.Friendship, error) {
	var requests []model.Friendship
	err := r.db.WithContext(ctx).
		Where("(user_a_id = ? OR user_b_id = ?) AND requester_id <> ?", userID, userID, userID).
		Where("status = ?", model.FriendshipPending).
		Order("requested_at DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

func (r *FriendshipRepo) ListPendingSent(ctx context.Context, userID int64) ([]model.Friendship, error) {
	var requests []model.Friendship
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND status = ?", userID, model.FriendshipPending).
		Order("requested_at DESC, id DESC").
		Find(&requests).Error
	return requests, err
}
