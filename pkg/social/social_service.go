package social

import (
	"context"
	"encoding/json"
	"errors"

	"itired-backend/domain"
	"itired-backend/entities"
	"itired-backend/pkg/history"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const tasteMatchWindow = 100

type (
	SocialService interface {
		GetFriends(ctx context.Context, userID string) ([]*domain.FriendEntry, error)
		AddFriend(ctx context.Context, userID, friendID string) error
		AcceptFriend(ctx context.Context, userID, requesterID string) error
		GetActivityFeed(ctx context.Context, userID string, limit int) ([]*domain.ActivityEntry, error)

		// RecordActivity is fire-and-forget: feed entries are never worth
		// failing the action that produced them.
		RecordActivity(ctx context.Context, userID, activityType, data string)
	}

	socialService struct {
		socialRepository  SocialRepository
		historyRepository history.HistoryRepository
	}
)

func NewSocialService(socialRepository SocialRepository, historyRepository history.HistoryRepository) SocialService {
	return &socialService{
		socialRepository:  socialRepository,
		historyRepository: historyRepository,
	}
}

func (s *socialService) GetFriends(ctx context.Context, userID string) ([]*domain.FriendEntry, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	friends, err := s.socialRepository.GetFriendsOfUser(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.FriendEntry, 0, len(friends))
	for _, f := range friends {
		incoming := f.FriendID == userUUID
		other := f.FriendUser
		if incoming {
			other = f.User
		}
		entry := &domain.FriendEntry{
			Status:     f.Status,
			TasteMatch: f.TasteMatch,
			Incoming:   incoming && f.Status == "pending",
		}
		if other != nil {
			entry.UserID = other.ID.String()
			entry.Username = other.Username
			entry.DisplayName = other.DisplayName
			entry.AvatarURL = other.AvatarURL
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *socialService) AddFriend(ctx context.Context, userID, friendID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	friendUUID, err := uuid.Parse(friendID)
	if err != nil {
		return domain.ErrParseUUID
	}
	if userUUID == friendUUID {
		return domain.ErrCannotBefriendSelf
	}

	_, err = s.socialRepository.GetFriendPair(ctx, userUUID, friendUUID)
	if err == nil {
		return domain.ErrFriendRequestExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	friend := &entities.Friend{
		ID:       uuid.New(),
		UserID:   userUUID,
		FriendID: friendUUID,
		Status:   "pending",
	}
	if err := s.socialRepository.CreateFriend(ctx, friend); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrFriendRequestExists
		}
		return err
	}
	return nil
}

func (s *socialService) AcceptFriend(ctx context.Context, userID, requesterID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	requesterUUID, err := uuid.Parse(requesterID)
	if err != nil {
		return domain.ErrParseUUID
	}

	friend, err := s.socialRepository.GetFriendPair(ctx, userUUID, requesterUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrFriendRequestNotFound
		}
		return err
	}
	// Only the recipient of a pending request can accept it.
	if friend.Status != "pending" || friend.FriendID != userUUID {
		return domain.ErrFriendRequestNotFound
	}

	friend.Status = "accepted"
	friend.TasteMatch = s.tasteMatch(ctx, friend.UserID, friend.FriendID)
	if err := s.socialRepository.UpdateFriend(ctx, friend); err != nil {
		return err
	}

	s.RecordActivity(ctx, userID, domain.ActivityFriendAdded, requesterID)
	return nil
}

func (s *socialService) GetActivityFeed(ctx context.Context, userID string, limit int) ([]*domain.ActivityEntry, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	ids := []uuid.UUID{userUUID}
	friends, err := s.socialRepository.GetFriendsOfUser(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	for _, f := range friends {
		if f.Status != "accepted" {
			continue
		}
		if f.UserID == userUUID {
			ids = append(ids, f.FriendID)
		} else {
			ids = append(ids, f.UserID)
		}
	}

	activities, err := s.socialRepository.GetRecentActivity(ctx, ids, limit)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.ActivityEntry, 0, len(activities))
	for _, a := range activities {
		entry := &domain.ActivityEntry{
			UserID:       a.UserID.String(),
			ActivityType: a.ActivityType,
			ActivityData: a.ActivityData,
			CreatedAt:    a.CreatedAt,
		}
		if a.User != nil {
			entry.Username = a.User.Username
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *socialService) RecordActivity(ctx context.Context, userID, activityType, data string) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		log.Warnf("record activity: bad user id %q: %v", userID, err)
		return
	}
	activity := &entities.UserActivity{
		ID:           uuid.New(),
		UserID:       userUUID,
		ActivityType: activityType,
		ActivityData: data,
	}
	if err := s.socialRepository.CreateActivity(ctx, activity); err != nil {
		log.Errorf("record activity %s for %s: %v", activityType, userID, err)
	}
}

// tasteMatch scores the overlap of two users' recently played artists as a
// percentage. Zero history on either side means zero match, not an error.
func (s *socialService) tasteMatch(ctx context.Context, a, b uuid.UUID) int {
	artistsA := s.recentArtists(ctx, a)
	artistsB := s.recentArtists(ctx, b)
	if len(artistsA) == 0 || len(artistsB) == 0 {
		return 0
	}

	smaller := len(artistsA)
	if len(artistsB) < smaller {
		smaller = len(artistsB)
	}

	shared := 0
	for artist := range artistsA {
		if artistsB[artist] {
			shared++
		}
	}
	return shared * 100 / smaller
}

func (s *socialService) recentArtists(ctx context.Context, userID uuid.UUID) map[string]bool {
	entries, err := s.historyRepository.RecentEntries(ctx, userID.String(), tasteMatchWindow)
	if err != nil {
		log.Warnf("taste match: history for %s: %v", userID, err)
		return nil
	}

	artists := make(map[string]bool)
	for _, entry := range entries {
		var track domain.TrackRecord
		if err := json.Unmarshal([]byte(entry.TrackData), &track); err != nil {
			continue
		}
		for _, artist := range track.Artists {
			artists[artist] = true
		}
	}
	return artists
}
