package music

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"itired-backend/domain"
	"itired-backend/entities"
	"itired-backend/pkg/currency"
	"itired-backend/pkg/history"
	"itired-backend/pkg/provider"
	"itired-backend/pkg/social"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const statsWindow = 100

type (
	MusicService interface {
		Search(ctx context.Context, userID, query string) ([]domain.TrackRecord, error)
		GetPlaylists(ctx context.Context, userID string) ([]domain.Playlist, error)
		GetPlaylistTracks(ctx context.Context, userID, playlistID string) ([]domain.TrackRecord, error)
		GetLikedTracks(ctx context.Context, userID string, limit int) ([]domain.TrackRecord, error)
		PlayTrack(ctx context.Context, userID, trackID string) (*domain.PlayTrackResponse, error)
		GetListeningStats(ctx context.Context, userID string) (*domain.ListeningStats, error)
	}

	musicService struct {
		resolver          provider.Resolver
		historyRepository history.HistoryRepository
		currencyService   currency.CurrencyService
		socialService     social.SocialService
	}
)

func NewMusicService(
	resolver provider.Resolver,
	historyRepository history.HistoryRepository,
	currencyService currency.CurrencyService,
	socialService social.SocialService,
) MusicService {
	return &musicService{
		resolver:          resolver,
		historyRepository: historyRepository,
		currencyService:   currencyService,
		socialService:     socialService,
	}
}

func (s *musicService) Search(ctx context.Context, userID, query string) ([]domain.TrackRecord, error) {
	adapter, err := s.resolver.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return adapter.SearchTracks(ctx, query)
}

func (s *musicService) GetPlaylists(ctx context.Context, userID string) ([]domain.Playlist, error) {
	adapter, err := s.resolver.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return adapter.GetPlaylists(ctx)
}

func (s *musicService) GetPlaylistTracks(ctx context.Context, userID, playlistID string) ([]domain.TrackRecord, error) {
	adapter, err := s.resolver.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return adapter.GetPlaylistTracks(ctx, playlistID)
}

func (s *musicService) GetLikedTracks(ctx context.Context, userID string, limit int) ([]domain.TrackRecord, error) {
	adapter, err := s.resolver.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return adapter.GetLikedTracks(ctx, limit)
}

// PlayTrack resolves the stream URL and, on success, records history, credits
// the listen reward and appends an activity entry. Those side effects never
// fail the playback response.
func (s *musicService) PlayTrack(ctx context.Context, userID, trackID string) (*domain.PlayTrackResponse, error) {
	adapter, err := s.resolver.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := adapter.GetTrackURL(ctx, trackID)
	if err != nil {
		return nil, err
	}

	track, err := adapter.GetTrack(ctx, trackID)
	if err != nil {
		log.Warnf("play: track snapshot %s: %v", trackID, err)
		track = &domain.TrackRecord{ID: trackID}
	}

	s.recordPlay(ctx, userID, track)

	return &domain.PlayTrackResponse{URL: url, Track: track}, nil
}

func (s *musicService) recordPlay(ctx context.Context, userID string, track *domain.TrackRecord) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		log.Errorf("play: bad user id %q: %v", userID, err)
		return
	}

	snapshot, err := json.Marshal(track)
	if err != nil {
		log.Errorf("play: marshal track %s: %v", track.ID, err)
		snapshot = []byte("{}")
	}

	entry := &entities.ListeningHistory{
		ID:        uuid.New(),
		UserID:    userUUID,
		TrackID:   track.ID,
		TrackData: string(snapshot),
		PlayedAt:  time.Now(),
	}
	if err := s.historyRepository.Append(ctx, entry); err != nil {
		log.Errorf("play: append history for %s: %v", userID, err)
	}

	if _, err := s.currencyService.Credit(ctx, userID, domain.ListenRewardAmount, domain.ReasonListenTrack); err != nil {
		log.Errorf("play: listen credit for %s: %v", userID, err)
	}

	s.socialService.RecordActivity(ctx, userID, domain.ActivityTrackPlayed, track.ID)
}

func (s *musicService) GetListeningStats(ctx context.Context, userID string) (*domain.ListeningStats, error) {
	entries, err := s.historyRepository.RecentEntries(ctx, userID, statsWindow)
	if err != nil {
		return nil, err
	}

	total, err := s.historyRepository.CountForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	artistCounts := map[string]int{}
	var artistOrder []string
	genreCounts := map[string]int{}
	var genreOrder []string

	for _, entry := range entries {
		var track domain.TrackRecord
		if err := json.Unmarshal([]byte(entry.TrackData), &track); err != nil {
			continue
		}
		for _, artist := range track.Artists {
			if _, ok := artistCounts[artist]; !ok {
				artistOrder = append(artistOrder, artist)
			}
			artistCounts[artist]++
		}
		if track.Genre != "" {
			if _, ok := genreCounts[track.Genre]; !ok {
				genreOrder = append(genreOrder, track.Genre)
			}
			genreCounts[track.Genre]++
		}
	}

	sort.SliceStable(artistOrder, func(i, j int) bool {
		return artistCounts[artistOrder[i]] > artistCounts[artistOrder[j]]
	})
	sort.SliceStable(genreOrder, func(i, j int) bool {
		return genreCounts[genreOrder[i]] > genreCounts[genreOrder[j]]
	})

	stats := &domain.ListeningStats{TotalTracks: int(total)}
	for i, artist := range artistOrder {
		if i >= 5 {
			break
		}
		stats.TopArtists = append(stats.TopArtists, domain.ArtistCount{Name: artist, Count: artistCounts[artist]})
	}
	for i, genre := range genreOrder {
		if i >= 5 {
			break
		}
		stats.TopGenres = append(stats.TopGenres, domain.GenreCount{Name: genre, Count: genreCounts[genre]})
	}
	return stats, nil
}
