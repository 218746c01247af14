package provider

import (
	"context"

	"itired-backend/domain"
)

const (
	ServiceYandex = "yandex"
	ServiceVK     = "vk"
)

type (
	// Adapter normalizes one upstream music service. Implementations own all
	// probing of optional upstream fields; callers only ever see TrackRecord.
	Adapter interface {
		Name() string
		SearchTracks(ctx context.Context, query string) ([]domain.TrackRecord, error)
		GetLikedTracks(ctx context.Context, limit int) ([]domain.TrackRecord, error)
		GetChart(ctx context.Context) ([]domain.TrackRecord, error)
		GetNewReleases(ctx context.Context) ([]domain.TrackRecord, error)
		GetRecommendations(ctx context.Context, limit int) ([]domain.TrackRecord, error)
		GetTrack(ctx context.Context, trackID string) (*domain.TrackRecord, error)
		GetTrackURL(ctx context.Context, trackID string) (string, error)
		GetPlaylists(ctx context.Context) ([]domain.Playlist, error)
		GetPlaylistTracks(ctx context.Context, playlistID string) ([]domain.TrackRecord, error)
	}

	// CredentialSource resolves a user's active music service and the stored
	// token for it. Implemented by the user service.
	CredentialSource interface {
		ProviderCredentials(ctx context.Context, userID string) (service string, token string, err error)
	}

	Resolver interface {
		ForUser(ctx context.Context, userID string) (Adapter, error)
	}

	resolver struct {
		credentials   CredentialSource
		yandexAPIBase string
		vkAPIBase     string
	}
)

func NewResolver(credentials CredentialSource, yandexAPIBase, vkAPIBase string) Resolver {
	return &resolver{
		credentials:   credentials,
		yandexAPIBase: yandexAPIBase,
		vkAPIBase:     vkAPIBase,
	}
}

func (r *resolver) ForUser(ctx context.Context, userID string) (Adapter, error) {
	service, token, err := r.credentials.ProviderCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, domain.ErrProviderTokenMissing
	}

	switch service {
	case ServiceVK:
		return NewVKAdapter(token, r.vkAPIBase), nil
	case ServiceYandex:
		return NewYandexAdapter(token, r.yandexAPIBase), nil
	default:
		return nil, domain.ErrUnknownMusicService
	}
}
