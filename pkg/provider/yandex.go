package provider

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"itired-backend/domain"
)

const defaultYandexAPIBase = "https://api.music.yandex.net"

// Signing salt used by the download-info exchange; public knowledge, shipped
// with every client of this API.
const yandexMP3Salt = "XGRlBW9FXlekgbPrRHuSiA"

type (
	yandexAdapter struct {
		token   string
		baseURL string
		client  *http.Client
	}

	// Upstream shapes. Optional fields stay pointers; normalization decides
	// what to do when they are absent.
	yandexArtist struct {
		Name string `json:"name"`
	}

	yandexAlbum struct {
		ID       json.Number    `json:"id"`
		Title    *string        `json:"title"`
		Year     *int           `json:"year"`
		Genre    *string        `json:"genre"`
		CoverURI *string        `json:"coverUri"`
		Artists  []yandexArtist `json:"artists"`
	}

	yandexTrack struct {
		ID         json.Number    `json:"id"`
		Title      *string        `json:"title"`
		DurationMs *int           `json:"durationMs"`
		CoverURI   *string        `json:"coverUri"`
		Artists    []yandexArtist `json:"artists"`
		Albums     []yandexAlbum  `json:"albums"`
	}

	yandexPlaylist struct {
		Kind       json.Number `json:"kind"`
		Title      string      `json:"title"`
		TrackCount int         `json:"trackCount"`
		CoverURI   *string     `json:"coverUri"`
		Owner      *struct {
			Login string `json:"login"`
		} `json:"owner"`
	}

	yandexDownloadInfo struct {
		Codec           string `json:"codec"`
		BitrateInKbps   int    `json:"bitrateInKbps"`
		DownloadInfoURL string `json:"downloadInfoUrl"`
	}

	yandexDownloadKey struct {
		Host string `json:"host"`
		Path string `json:"path"`
		TS   string `json:"ts"`
		S    string `json:"s"`
	}
)

func NewYandexAdapter(token, baseURL string) Adapter {
	if baseURL == "" {
		baseURL = defaultYandexAPIBase
	}
	return &yandexAdapter{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *yandexAdapter) Name() string {
	return ServiceYandex
}

func (a *yandexAdapter) get(ctx context.Context, path string, query url.Values, out any) error {
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "OAuth "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: yandex api status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *yandexAdapter) SearchTracks(ctx context.Context, query string) ([]domain.TrackRecord, error) {
	var body struct {
		Result struct {
			Tracks struct {
				Results []yandexTrack `json:"results"`
			} `json:"tracks"`
		} `json:"result"`
	}

	q := url.Values{}
	q.Set("text", query)
	q.Set("type", "track")
	q.Set("page", "0")
	if err := a.get(ctx, "/search", q, &body); err != nil {
		return nil, err
	}

	return a.normalizeTracks(body.Result.Tracks.Results), nil
}

func (a *yandexAdapter) GetLikedTracks(ctx context.Context, limit int) ([]domain.TrackRecord, error) {
	var body struct {
		Result struct {
			Library struct {
				Tracks []struct {
					ID      string `json:"id"`
					AlbumID string `json:"albumId"`
				} `json:"tracks"`
			} `json:"library"`
		} `json:"result"`
	}

	if err := a.get(ctx, "/users/me/likes/tracks", nil, &body); err != nil {
		return nil, err
	}

	ids := make([]string, 0, limit)
	for _, t := range body.Result.Library.Tracks {
		if len(ids) >= limit {
			break
		}
		ids = append(ids, t.ID)
	}
	if len(ids) == 0 {
		return []domain.TrackRecord{}, nil
	}

	var full struct {
		Result []yandexTrack `json:"result"`
	}
	q := url.Values{}
	q.Set("track-ids", strings.Join(ids, ","))
	if err := a.get(ctx, "/tracks", q, &full); err != nil {
		return nil, err
	}

	return a.normalizeTracks(full.Result), nil
}

func (a *yandexAdapter) GetChart(ctx context.Context) ([]domain.TrackRecord, error) {
	var body struct {
		Result struct {
			Chart struct {
				Tracks []struct {
					Track yandexTrack `json:"track"`
				} `json:"tracks"`
			} `json:"chart"`
		} `json:"result"`
	}

	if err := a.get(ctx, "/landing3/chart/world", nil, &body); err != nil {
		return nil, err
	}

	tracks := make([]yandexTrack, 0, len(body.Result.Chart.Tracks))
	for _, entry := range body.Result.Chart.Tracks {
		tracks = append(tracks, entry.Track)
	}
	return a.normalizeTracks(tracks), nil
}

func (a *yandexAdapter) GetNewReleases(ctx context.Context) ([]domain.TrackRecord, error) {
	var body struct {
		Result struct {
			NewReleases []yandexAlbum `json:"newReleases"`
		} `json:"result"`
	}

	if err := a.get(ctx, "/landing3/new-releases", nil, &body); err != nil {
		return nil, err
	}

	records := make([]domain.TrackRecord, 0, len(body.Result.NewReleases))
	for _, album := range body.Result.NewReleases {
		records = append(records, a.normalizeAlbum(album))
	}
	return records, nil
}

// Yandex has no dedicated recommendation feed in this API surface; the chart
// is the closest equivalent when one is requested directly.
func (a *yandexAdapter) GetRecommendations(ctx context.Context, limit int) ([]domain.TrackRecord, error) {
	tracks, err := a.GetChart(ctx)
	if err != nil {
		return nil, err
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

func (a *yandexAdapter) GetTrack(ctx context.Context, trackID string) (*domain.TrackRecord, error) {
	nativeID := strings.TrimPrefix(trackID, "yandex_")

	var body struct {
		Result []yandexTrack `json:"result"`
	}
	q := url.Values{}
	q.Set("track-ids", nativeID)
	if err := a.get(ctx, "/tracks", q, &body); err != nil {
		return nil, err
	}
	if len(body.Result) == 0 {
		return nil, domain.ErrTrackNotFound
	}

	record := a.normalizeTrack(body.Result[0])
	return &record, nil
}

func (a *yandexAdapter) GetTrackURL(ctx context.Context, trackID string) (string, error) {
	nativeID := strings.TrimPrefix(trackID, "yandex_")

	var info struct {
		Result []yandexDownloadInfo `json:"result"`
	}
	if err := a.get(ctx, "/tracks/"+nativeID+"/download-info", nil, &info); err != nil {
		return "", err
	}

	best := -1
	for i, d := range info.Result {
		if d.Codec != "mp3" {
			continue
		}
		if best < 0 || d.BitrateInKbps > info.Result[best].BitrateInKbps {
			best = i
		}
	}
	if best < 0 {
		return "", domain.ErrTrackNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.Result[best].DownloadInfoURL+"&format=json", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "OAuth "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var key yandexDownloadKey
	if err := json.NewDecoder(resp.Body).Decode(&key); err != nil {
		return "", err
	}

	sign := fmt.Sprintf("%x", md5.Sum([]byte(yandexMP3Salt+strings.TrimPrefix(key.Path, "/")+key.S)))
	return fmt.Sprintf("https://%s/get-mp3/%s/%s%s", key.Host, sign, key.TS, key.Path), nil
}

func (a *yandexAdapter) GetPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	var body struct {
		Result []yandexPlaylist `json:"result"`
	}
	if err := a.get(ctx, "/users/me/playlists/list", nil, &body); err != nil {
		return nil, err
	}

	playlists := make([]domain.Playlist, 0, len(body.Result))
	for _, p := range body.Result {
		owner := ""
		if p.Owner != nil {
			owner = p.Owner.Login
		}
		playlists = append(playlists, domain.Playlist{
			ID:         "yandex_" + p.Kind.String(),
			Title:      p.Title,
			TrackCount: p.TrackCount,
			CoverURL:   yandexCoverURL(p.CoverURI),
			Owner:      owner,
			Service:    ServiceYandex,
		})
	}
	return playlists, nil
}

func (a *yandexAdapter) GetPlaylistTracks(ctx context.Context, playlistID string) ([]domain.TrackRecord, error) {
	kind := strings.TrimPrefix(playlistID, "yandex_")

	var body struct {
		Result struct {
			Tracks []struct {
				Track yandexTrack `json:"track"`
			} `json:"tracks"`
		} `json:"result"`
	}
	if err := a.get(ctx, "/users/me/playlists/"+kind, nil, &body); err != nil {
		return nil, err
	}

	tracks := make([]yandexTrack, 0, len(body.Result.Tracks))
	for _, entry := range body.Result.Tracks {
		tracks = append(tracks, entry.Track)
	}
	return a.normalizeTracks(tracks), nil
}

func (a *yandexAdapter) normalizeTracks(tracks []yandexTrack) []domain.TrackRecord {
	records := make([]domain.TrackRecord, 0, len(tracks))
	for _, t := range tracks {
		records = append(records, a.normalizeTrack(t))
	}
	return records
}

func (a *yandexAdapter) normalizeTrack(t yandexTrack) domain.TrackRecord {
	record := domain.TrackRecord{
		ID:       "yandex_" + t.ID.String(),
		Title:    "Unknown Track",
		Artists:  artistNames(t.Artists),
		CoverURL: yandexCoverURL(t.CoverURI),
	}
	if t.Title != nil {
		record.Title = *t.Title
	}
	if t.DurationMs != nil {
		record.DurationMs = *t.DurationMs
	}
	if len(t.Albums) > 0 {
		album := t.Albums[0]
		if album.Title != nil {
			record.Album = *album.Title
		}
		if album.Year != nil {
			record.Year = *album.Year
		}
		if album.Genre != nil {
			record.Genre = *album.Genre
		}
		if record.CoverURL == "" {
			record.CoverURL = yandexCoverURL(album.CoverURI)
		}
	}
	return record
}

func (a *yandexAdapter) normalizeAlbum(album yandexAlbum) domain.TrackRecord {
	record := domain.TrackRecord{
		ID:       "yandex_" + album.ID.String(),
		Title:    "Unknown Album",
		Artists:  artistNames(album.Artists),
		CoverURL: yandexCoverURL(album.CoverURI),
	}
	if album.Title != nil {
		record.Title = *album.Title
	}
	if album.Year != nil {
		record.Year = *album.Year
	}
	if album.Genre != nil {
		record.Genre = *album.Genre
	}
	return record
}

func artistNames(artists []yandexArtist) []string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return names
}

// Cover URIs arrive as "avatars.yandex.net/.../%%" where %% is a size slot.
func yandexCoverURL(coverURI *string) string {
	if coverURI == nil || *coverURI == "" {
		return ""
	}
	return "https://" + strings.Replace(*coverURI, "%%", "300x300", 1)
}
