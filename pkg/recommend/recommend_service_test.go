package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"itired-backend/domain"
	"itired-backend/entities"
	"itired-backend/pkg/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	name          string
	searchResults map[string][]domain.TrackRecord
	searchErrs    map[string]error
	liked         []domain.TrackRecord
	likedErr      error
	chart         []domain.TrackRecord
	newReleases   []domain.TrackRecord
	recommended   []domain.TrackRecord
	searchCalls   []string
}

func (f *fakeAdapter) Name() string {
	if f.name == "" {
		return provider.ServiceYandex
	}
	return f.name
}

func (f *fakeAdapter) SearchTracks(_ context.Context, query string) ([]domain.TrackRecord, error) {
	f.searchCalls = append(f.searchCalls, query)
	if err, ok := f.searchErrs[query]; ok {
		return nil, err
	}
	return f.searchResults[query], nil
}

func (f *fakeAdapter) GetLikedTracks(_ context.Context, limit int) ([]domain.TrackRecord, error) {
	if f.likedErr != nil {
		return nil, f.likedErr
	}
	if len(f.liked) > limit {
		return f.liked[:limit], nil
	}
	return f.liked, nil
}

func (f *fakeAdapter) GetChart(context.Context) ([]domain.TrackRecord, error) {
	return f.chart, nil
}

func (f *fakeAdapter) GetNewReleases(context.Context) ([]domain.TrackRecord, error) {
	return f.newReleases, nil
}

func (f *fakeAdapter) GetRecommendations(_ context.Context, limit int) ([]domain.TrackRecord, error) {
	if len(f.recommended) > limit {
		return f.recommended[:limit], nil
	}
	return f.recommended, nil
}

func (f *fakeAdapter) GetTrack(context.Context, string) (*domain.TrackRecord, error) {
	return nil, domain.ErrTrackNotFound
}

func (f *fakeAdapter) GetTrackURL(context.Context, string) (string, error) {
	return "", domain.ErrTrackNotFound
}

func (f *fakeAdapter) GetPlaylists(context.Context) ([]domain.Playlist, error) {
	return nil, nil
}

func (f *fakeAdapter) GetPlaylistTracks(context.Context, string) ([]domain.TrackRecord, error) {
	return nil, nil
}

type fakeResolver struct {
	adapter provider.Adapter
	err     error
}

func (r *fakeResolver) ForUser(context.Context, string) (provider.Adapter, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.adapter, nil
}

type fakeHistory struct {
	entries []*entities.ListeningHistory
	err     error
}

func (h *fakeHistory) Append(context.Context, *entities.ListeningHistory) error { return nil }

func (h *fakeHistory) RecentEntries(_ context.Context, _ string, limit int) ([]*entities.ListeningHistory, error) {
	if h.err != nil {
		return nil, h.err
	}
	if len(h.entries) > limit {
		return h.entries[:limit], nil
	}
	return h.entries, nil
}

func (h *fakeHistory) CountForUser(context.Context, string) (int64, error) {
	return int64(len(h.entries)), nil
}

func historyOf(t *testing.T, tracks ...domain.TrackRecord) *fakeHistory {
	t.Helper()
	h := &fakeHistory{}
	for _, track := range tracks {
		raw, err := json.Marshal(track)
		require.NoError(t, err)
		h.entries = append(h.entries, &entities.ListeningHistory{TrackID: track.ID, TrackData: string(raw)})
	}
	return h
}

func tracks(prefix string, n int) []domain.TrackRecord {
	out := make([]domain.TrackRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.TrackRecord{
			ID:    prefix + string(rune('a'+i)),
			Title: prefix,
		})
	}
	return out
}

func newService(adapter provider.Adapter, h *fakeHistory) RecommendService {
	return NewRecommendService(&fakeResolver{adapter: adapter}, h, nil, rand.New(rand.NewSource(1)))
}

const testUserID = "2f9c6d4e-0000-0000-0000-000000000001"

func TestRecommendationsCappedAndUnique(t *testing.T) {
	adapter := &fakeAdapter{
		searchResults: map[string][]domain.TrackRecord{
			"rock":     tracks("rock_", 5),
			"jazz":     tracks("jazz_", 5),
			"Artist A": tracks("aa_", 5),
			"Artist B": tracks("bb_", 5),
		},
		liked: tracks("liked_", 10),
	}
	history := historyOf(t,
		domain.TrackRecord{ID: "h1", Genre: "rock", Artists: []string{"Artist A"}},
		domain.TrackRecord{ID: "h2", Genre: "rock", Artists: []string{"Artist A"}},
		domain.TrackRecord{ID: "h3", Genre: "jazz", Artists: []string{"Artist B"}},
	)

	service := newService(adapter, history)
	result, err := service.GetRecommendations(context.Background(), testUserID)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(result), 8)
	seen := map[string]bool{}
	for _, track := range result {
		assert.False(t, seen[track.ID], "duplicate id %s", track.ID)
		seen[track.ID] = true
	}
}

func TestDuplicateKeepsEarlierSourceTag(t *testing.T) {
	shared := domain.TrackRecord{ID: "shared", Title: "Shared"}
	adapter := &fakeAdapter{
		searchResults: map[string][]domain.TrackRecord{
			"rock":     {shared},
			"Artist A": {shared, {ID: "other"}},
		},
	}
	history := historyOf(t,
		domain.TrackRecord{ID: "h1", Genre: "rock", Artists: []string{"Artist A"}},
	)

	service := newService(adapter, history)
	result, err := service.GetRecommendations(context.Background(), testUserID)
	require.NoError(t, err)

	var sharedTag string
	for _, track := range result {
		if track.ID == "shared" {
			sharedTag = track.Source
		}
	}
	assert.Equal(t, domain.SourceHistoryGenre, sharedTag)
}

func TestSingleSearchFailureIsIsolated(t *testing.T) {
	adapter := &fakeAdapter{
		searchResults: map[string][]domain.TrackRecord{
			"jazz": tracks("jazz_", 2),
		},
		searchErrs: map[string]error{
			"rock": errors.New("upstream down"),
		},
	}
	history := historyOf(t,
		domain.TrackRecord{ID: "h1", Genre: "rock"},
		domain.TrackRecord{ID: "h2", Genre: "rock"},
		domain.TrackRecord{ID: "h3", Genre: "jazz"},
	)

	service := newService(adapter, history)
	result, err := service.GetRecommendations(context.Background(), testUserID)
	require.NoError(t, err)

	require.Len(t, result, 2)
	for _, track := range result {
		assert.Equal(t, domain.SourceHistoryGenre, track.Source)
	}
}

func TestFallbackWhenNoListeningSignal(t *testing.T) {
	adapter := &fakeAdapter{
		chart:       tracks("chart_", 3),
		newReleases: tracks("new_", 2),
	}

	service := newService(adapter, &fakeHistory{})
	result, err := service.GetRecommendations(context.Background(), testUserID)
	require.NoError(t, err)

	require.Len(t, result, 5)
	tags := map[string]int{}
	for _, track := range result {
		tags[track.Source]++
	}
	assert.Equal(t, 2, tags[domain.SourceNewReleases])
	assert.Equal(t, 3, tags[domain.SourceChart])
}

func TestFallbackSkippedWhenHistoryPassProduces(t *testing.T) {
	adapter := &fakeAdapter{
		searchResults: map[string][]domain.TrackRecord{
			"rock": tracks("rock_", 1),
		},
		chart: tracks("chart_", 3),
	}
	history := historyOf(t, domain.TrackRecord{ID: "h1", Genre: "rock"})

	service := newService(adapter, history)
	result, err := service.GetRecommendations(context.Background(), testUserID)
	require.NoError(t, err)

	require.Len(t, result, 1)
	assert.Equal(t, domain.SourceHistoryGenre, result[0].Source)
}

func TestSocialProviderSinglePass(t *testing.T) {
	adapter := &fakeAdapter{
		name:        provider.ServiceVK,
		recommended: tracks("vkrec_", 10),
	}

	service := newService(adapter, historyOf(t, domain.TrackRecord{ID: "h1", Genre: "rock"}))
	result, err := service.GetRecommendations(context.Background(), testUserID)
	require.NoError(t, err)

	assert.Len(t, result, 6)
	for _, track := range result {
		assert.Equal(t, domain.SourceProviderRecommendation, track.Source)
	}
	assert.Empty(t, adapter.searchCalls)
}

func TestLikedSimilarExcludesSeed(t *testing.T) {
	seed := domain.TrackRecord{ID: "seed", Title: "Seed Song", Artists: []string{"Seed Artist"}}
	adapter := &fakeAdapter{
		liked: []domain.TrackRecord{seed},
		searchResults: map[string][]domain.TrackRecord{
			"Seed Song Seed Artist": {seed, {ID: "n1"}, {ID: "n2"}, {ID: "n3"}},
		},
	}

	service := newService(adapter, &fakeHistory{})
	result, err := service.GetRecommendations(context.Background(), testUserID)
	require.NoError(t, err)

	require.Len(t, result, 2)
	for _, track := range result {
		assert.NotEqual(t, "seed", track.ID)
		assert.Equal(t, domain.SourceLikedSimilar, track.Source)
	}
}

func TestMissingTokenSurfaces(t *testing.T) {
	service := NewRecommendService(
		&fakeResolver{err: domain.ErrProviderTokenMissing},
		&fakeHistory{},
		nil,
		rand.New(rand.NewSource(1)),
	)

	_, err := service.GetRecommendations(context.Background(), testUserID)
	assert.ErrorIs(t, err, domain.ErrProviderTokenMissing)
}

func TestFrequencyRankingStable(t *testing.T) {
	c := newCounter()
	c.add("one")
	c.add("two")
	c.add("two")
	c.add("three")

	assert.Equal(t, []string{"two", "one"}, c.top(2))
	assert.Equal(t, []string{"two", "one", "three"}, c.top(5))
}
