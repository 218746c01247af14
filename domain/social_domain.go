package domain

import (
	"errors"
	"time"
)

const (
	ActivityTrackPlayed   = "track_played"
	ActivityItemPurchased = "item_purchased"
	ActivityRewardClaimed = "reward_claimed"
	ActivityFriendAdded   = "friend_added"
)

var (
	MessageSuccessGetFriends   = "friends retrieved successfully"
	MessageSuccessAddFriend    = "friend request sent successfully"
	MessageSuccessAcceptFriend = "friend request accepted successfully"
	MessageSuccessGetActivity  = "activity feed retrieved successfully"

	MessageFailedGetFriends   = "failed to retrieve friends"
	MessageFailedAddFriend    = "failed to send friend request"
	MessageFailedAcceptFriend = "failed to accept friend request"
	MessageFailedGetActivity  = "failed to retrieve activity feed"

	ErrFriendRequestExists   = errors.New("friend request already exists")
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrCannotBefriendSelf    = errors.New("cannot add yourself as a friend")
)

type (
	FriendEntry struct {
		UserID      string `json:"user_id"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name,omitempty"`
		AvatarURL   string `json:"avatar_url,omitempty"`
		Status      string `json:"status"`
		TasteMatch  int    `json:"taste_match"`
		Incoming    bool   `json:"incoming"`
	}

	ActivityEntry struct {
		UserID       string    `json:"user_id"`
		Username     string    `json:"username,omitempty"`
		ActivityType string    `json:"activity_type"`
		ActivityData string    `json:"activity_data,omitempty"`
		CreatedAt    time.Time `json:"created_at"`
	}
)
