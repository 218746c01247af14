package domain

import (
	"errors"
)

// Source tags carried on recommended tracks, in pass-priority order.
const (
	SourceHistoryGenre           = "history_genre"
	SourceHistoryArtist          = "history_artist"
	SourceLikedSimilar           = "liked_similar"
	SourceChart                  = "chart"
	SourceNewReleases            = "new_releases"
	SourceProviderRecommendation = "provider_recommendation"
)

var (
	MessageSuccessGetRecommendations = "recommendations retrieved successfully"
	MessageSuccessSearch             = "search results retrieved successfully"
	MessageSuccessGetPlaylists       = "playlists retrieved successfully"
	MessageSuccessGetPlaylistTracks  = "playlist tracks retrieved successfully"
	MessageSuccessGetLikedTracks     = "liked tracks retrieved successfully"
	MessageSuccessPlayTrack          = "track url resolved successfully"
	MessageSuccessGetStats           = "listening stats retrieved successfully"

	MessageFailedGetRecommendations = "failed to retrieve recommendations"
	MessageFailedSearch             = "failed to search tracks"
	MessageFailedGetPlaylists       = "failed to retrieve playlists"
	MessageFailedGetPlaylistTracks  = "failed to retrieve playlist tracks"
	MessageFailedGetLikedTracks     = "failed to retrieve liked tracks"
	MessageFailedPlayTrack          = "failed to resolve track url"
	MessageFailedGetStats           = "failed to retrieve listening stats"

	ErrProviderTokenMissing = errors.New("music service token not configured")
	ErrProviderUnavailable  = errors.New("music service unavailable")
	ErrTrackNotFound        = errors.New("track not found")
)

type (
	// TrackRecord is the normalized track shape every provider adapter
	// produces. ID is provider-prefixed ("yandex_123", "vk_456") and is the
	// identity used for deduplication.
	TrackRecord struct {
		ID         string   `json:"id"`
		Title      string   `json:"title"`
		Artists    []string `json:"artists"`
		Album      string   `json:"album,omitempty"`
		DurationMs int      `json:"duration_ms"`
		CoverURL   string   `json:"cover_url,omitempty"`
		Year       int      `json:"year,omitempty"`
		Genre      string   `json:"genre,omitempty"`
		Source     string   `json:"source,omitempty"`
	}

	Playlist struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		TrackCount int    `json:"track_count"`
		CoverURL   string `json:"cover_url,omitempty"`
		Owner      string `json:"owner,omitempty"`
		Service    string `json:"service"`
	}

	PlayTrackResponse struct {
		URL   string       `json:"url"`
		Track *TrackRecord `json:"track,omitempty"`
	}

	ArtistCount struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	GenreCount struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	ListeningStats struct {
		TotalTracks int           `json:"total_tracks"`
		TopArtists  []ArtistCount `json:"top_artists"`
		TopGenres   []GenreCount  `json:"top_genres"`
	}
)
