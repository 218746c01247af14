package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"itired-backend/domain"
)

const (
	defaultVKAPIBase = "https://api.vk.com/method"
	vkAPIVersion     = "5.131"
)

type (
	vkAdapter struct {
		token   string
		baseURL string
		client  *http.Client
	}

	vkThumb struct {
		Photo300 *string `json:"photo_300"`
	}

	vkAudioAlbum struct {
		Title *string  `json:"title"`
		Thumb *vkThumb `json:"thumb"`
	}

	vkAudio struct {
		ID       int           `json:"id"`
		OwnerID  int           `json:"owner_id"`
		Artist   string        `json:"artist"`
		Title    string        `json:"title"`
		Duration int           `json:"duration"` // seconds
		URL      *string       `json:"url"`
		Album    *vkAudioAlbum `json:"album"`
	}

	vkPlaylist struct {
		ID      int      `json:"id"`
		OwnerID int      `json:"owner_id"`
		Title   string   `json:"title"`
		Count   int      `json:"count"`
		Photo   *vkThumb `json:"photo"`
	}

	vkError struct {
		ErrorCode int    `json:"error_code"`
		ErrorMsg  string `json:"error_msg"`
	}
)

func NewVKAdapter(token, baseURL string) Adapter {
	if baseURL == "" {
		baseURL = defaultVKAPIBase
	}
	return &vkAdapter{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *vkAdapter) Name() string {
	return ServiceVK
}

func (a *vkAdapter) call(ctx context.Context, method string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", a.token)
	params.Set("v", vkAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/"+method+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: vk api status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var envelope struct {
		Response json.RawMessage `json:"response"`
		Error    *vkError        `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if envelope.Error != nil {
		return fmt.Errorf("%w: vk api error %d: %s", domain.ErrProviderUnavailable, envelope.Error.ErrorCode, envelope.Error.ErrorMsg)
	}

	return json.Unmarshal(envelope.Response, out)
}

func (a *vkAdapter) items(ctx context.Context, method string, params url.Values) ([]vkAudio, error) {
	var body struct {
		Items []vkAudio `json:"items"`
	}
	if err := a.call(ctx, method, params, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

func (a *vkAdapter) SearchTracks(ctx context.Context, query string) ([]domain.TrackRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", "20")
	audios, err := a.items(ctx, "audio.search", params)
	if err != nil {
		return nil, err
	}
	return normalizeVKAudios(audios), nil
}

func (a *vkAdapter) GetLikedTracks(ctx context.Context, limit int) ([]domain.TrackRecord, error) {
	params := url.Values{}
	params.Set("count", strconv.Itoa(limit))
	audios, err := a.items(ctx, "audio.get", params)
	if err != nil {
		return nil, err
	}
	return normalizeVKAudios(audios), nil
}

func (a *vkAdapter) GetChart(ctx context.Context) ([]domain.TrackRecord, error) {
	params := url.Values{}
	params.Set("count", "20")
	// audio.getPopular returns a bare array rather than an items envelope
	var audios []vkAudio
	if err := a.call(ctx, "audio.getPopular", params, &audios); err != nil {
		return nil, err
	}
	return normalizeVKAudios(audios), nil
}

func (a *vkAdapter) GetNewReleases(ctx context.Context) ([]domain.TrackRecord, error) {
	params := url.Values{}
	params.Set("count", "20")
	params.Set("only_eng", "0")
	var audios []vkAudio
	if err := a.call(ctx, "audio.getPopular", params, &audios); err != nil {
		return nil, err
	}
	return normalizeVKAudios(audios), nil
}

func (a *vkAdapter) GetRecommendations(ctx context.Context, limit int) ([]domain.TrackRecord, error) {
	params := url.Values{}
	params.Set("count", strconv.Itoa(limit))
	audios, err := a.items(ctx, "audio.getRecommendations", params)
	if err != nil {
		return nil, err
	}
	records := normalizeVKAudios(audios)
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (a *vkAdapter) GetTrack(ctx context.Context, trackID string) (*domain.TrackRecord, error) {
	audio, err := a.getByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	record := normalizeVKAudio(*audio)
	return &record, nil
}

func (a *vkAdapter) GetTrackURL(ctx context.Context, trackID string) (string, error) {
	audio, err := a.getByID(ctx, trackID)
	if err != nil {
		return "", err
	}
	if audio.URL == nil || *audio.URL == "" {
		return "", domain.ErrTrackNotFound
	}
	return *audio.URL, nil
}

func (a *vkAdapter) getByID(ctx context.Context, trackID string) (*vkAudio, error) {
	params := url.Values{}
	params.Set("audios", vkNativeID(trackID))
	var audios []vkAudio
	if err := a.call(ctx, "audio.getById", params, &audios); err != nil {
		return nil, err
	}
	if len(audios) == 0 {
		return nil, domain.ErrTrackNotFound
	}
	return &audios[0], nil
}

func (a *vkAdapter) GetPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	var body struct {
		Items []vkPlaylist `json:"items"`
	}
	if err := a.call(ctx, "audio.getPlaylists", nil, &body); err != nil {
		return nil, err
	}

	playlists := make([]domain.Playlist, 0, len(body.Items))
	for _, p := range body.Items {
		cover := ""
		if p.Photo != nil && p.Photo.Photo300 != nil {
			cover = *p.Photo.Photo300
		}
		playlists = append(playlists, domain.Playlist{
			ID:         fmt.Sprintf("vk_%d_%d", p.OwnerID, p.ID),
			Title:      p.Title,
			TrackCount: p.Count,
			CoverURL:   cover,
			Owner:      fmt.Sprintf("id%d", p.OwnerID),
			Service:    ServiceVK,
		})
	}
	return playlists, nil
}

func (a *vkAdapter) GetPlaylistTracks(ctx context.Context, playlistID string) ([]domain.TrackRecord, error) {
	parts := strings.SplitN(vkNativeID(playlistID), "_", 2)
	params := url.Values{}
	params.Set("owner_id", parts[0])
	if len(parts) > 1 {
		params.Set("playlist_id", parts[1])
	}
	audios, err := a.items(ctx, "audio.get", params)
	if err != nil {
		return nil, err
	}
	return normalizeVKAudios(audios), nil
}

func normalizeVKAudios(audios []vkAudio) []domain.TrackRecord {
	records := make([]domain.TrackRecord, 0, len(audios))
	for _, audio := range audios {
		records = append(records, normalizeVKAudio(audio))
	}
	return records
}

func normalizeVKAudio(audio vkAudio) domain.TrackRecord {
	record := domain.TrackRecord{
		ID:         fmt.Sprintf("vk_%d_%d", audio.OwnerID, audio.ID),
		Title:      audio.Title,
		Artists:    []string{audio.Artist},
		DurationMs: audio.Duration * 1000,
	}
	if audio.Album != nil {
		if audio.Album.Title != nil {
			record.Album = *audio.Album.Title
		}
		if audio.Album.Thumb != nil && audio.Album.Thumb.Photo300 != nil {
			record.CoverURL = *audio.Album.Thumb.Photo300
		}
	}
	return record
}

// vkNativeID strips the "vk_" prefix, leaving the "{owner}_{id}" pair the VK
// API expects.
func vkNativeID(id string) string {
	return strings.TrimPrefix(id, "vk_")
}
