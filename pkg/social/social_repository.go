package social

import (
	"context"

	"itired-backend/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	SocialRepository interface {
		CreateFriend(ctx context.Context, friend *entities.Friend) error
		GetFriendPair(ctx context.Context, userID, friendID uuid.UUID) (*entities.Friend, error)
		GetFriendsOfUser(ctx context.Context, userID uuid.UUID) ([]*entities.Friend, error)
		UpdateFriend(ctx context.Context, friend *entities.Friend) error

		CreateActivity(ctx context.Context, activity *entities.UserActivity) error
		GetRecentActivity(ctx context.Context, userIDs []uuid.UUID, limit int) ([]*entities.UserActivity, error)
	}

	socialRepository struct {
		db *gorm.DB
	}
)

func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{
		db: db,
	}
}

func (r *socialRepository) CreateFriend(ctx context.Context, friend *entities.Friend) error {
	return r.db.WithContext(ctx).Create(friend).Error
}

func (r *socialRepository) GetFriendPair(ctx context.Context, userID, friendID uuid.UUID) (*entities.Friend, error) {
	var friend entities.Friend
	err := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID).
		First(&friend).Error
	if err != nil {
		return nil, err
	}
	return &friend, nil
}

func (r *socialRepository) GetFriendsOfUser(ctx context.Context, userID uuid.UUID) ([]*entities.Friend, error) {
	var friends []*entities.Friend
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("FriendUser").
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&friends).Error; err != nil {
		return nil, err
	}
	return friends, nil
}

func (r *socialRepository) UpdateFriend(ctx context.Context, friend *entities.Friend) error {
	return r.db.WithContext(ctx).Save(friend).Error
}

func (r *socialRepository) CreateActivity(ctx context.Context, activity *entities.UserActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *socialRepository) GetRecentActivity(ctx context.Context, userIDs []uuid.UUID, limit int) ([]*entities.UserActivity, error) {
	var activities []*entities.UserActivity
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
