package recommend

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"sync"
	"time"

	"itired-backend/domain"
	"itired-backend/pkg/cache"
	"itired-backend/pkg/history"
	"itired-backend/pkg/provider"

	"github.com/gofiber/fiber/v2/log"
)

const (
	maxResults     = 8
	historyWindow  = 20
	likedPoolSize  = 10
	likedSeeds     = 3
	perSeedResults = 2
	fallbackSlice  = 3
	socialResults  = 6
	callTimeout    = 5 * time.Second
)

type (
	// RecommendService builds a bounded recommendation list from layered
	// passes over the user's provider. Upstream failures degrade individual
	// passes to zero items; the caller always gets a list.
	RecommendService interface {
		GetRecommendations(ctx context.Context, userID string) ([]domain.TrackRecord, error)
	}

	recommendService struct {
		resolver          provider.Resolver
		historyRepository history.HistoryRepository
		cache             *cache.Cache
		rng               *rand.Rand
		rngMu             sync.Mutex
	}
)

func NewRecommendService(
	resolver provider.Resolver,
	historyRepository history.HistoryRepository,
	trackCache *cache.Cache,
	rng *rand.Rand,
) RecommendService {
	return &recommendService{
		resolver:          resolver,
		historyRepository: historyRepository,
		cache:             trackCache,
		rng:               rng,
	}
}

func (s *recommendService) GetRecommendations(ctx context.Context, userID string) ([]domain.TrackRecord, error) {
	adapter, err := s.resolver.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var candidates []domain.TrackRecord
	if adapter.Name() == provider.ServiceVK {
		candidates = s.socialPass(ctx, adapter)
	} else {
		candidates = s.historyPass(ctx, adapter, userID)
		candidates = append(candidates, s.likedSimilarPass(ctx, adapter, candidates)...)
		if len(candidates) == 0 {
			candidates = s.fallbackPass(ctx, adapter)
		}
	}

	result := dedupByID(candidates)

	s.rngMu.Lock()
	s.rng.Shuffle(len(result), func(i, j int) {
		result[i], result[j] = result[j], result[i]
	})
	s.rngMu.Unlock()

	if len(result) > maxResults {
		result = result[:maxResults]
	}
	return result, nil
}

// historyPass searches the provider for the user's most-played genres and
// artists over the recent listening window.
func (s *recommendService) historyPass(ctx context.Context, adapter provider.Adapter, userID string) []domain.TrackRecord {
	entries, err := s.historyRepository.RecentEntries(ctx, userID, historyWindow)
	if err != nil {
		log.Warnf("recommend: history for %s: %v", userID, err)
		return nil
	}
	if len(entries) == 0 {
		return nil
	}

	genres := newCounter()
	artists := newCounter()
	for _, entry := range entries {
		var track domain.TrackRecord
		if err := json.Unmarshal([]byte(entry.TrackData), &track); err != nil {
			continue
		}
		if track.Genre != "" {
			genres.add(track.Genre)
		}
		for _, artist := range track.Artists {
			artists.add(artist)
		}
	}

	var collected []domain.TrackRecord
	seen := map[string]bool{}

	for _, genre := range genres.top(2) {
		found := s.fetch(ctx, "search genre "+genre, func(ctx context.Context) ([]domain.TrackRecord, error) {
			return adapter.SearchTracks(ctx, genre)
		})
		collected = appendTagged(collected, seen, found, domain.SourceHistoryGenre, perSeedResults, "")
	}
	for _, artist := range artists.top(2) {
		found := s.fetch(ctx, "search artist "+artist, func(ctx context.Context) ([]domain.TrackRecord, error) {
			return adapter.SearchTracks(ctx, artist)
		})
		collected = appendTagged(collected, seen, found, domain.SourceHistoryArtist, perSeedResults, "")
	}
	return collected
}

// likedSimilarPass samples a few liked tracks and searches for neighbours of
// each, skipping the seed itself.
func (s *recommendService) likedSimilarPass(ctx context.Context, adapter provider.Adapter, existing []domain.TrackRecord) []domain.TrackRecord {
	liked := s.fetch(ctx, "liked tracks", func(ctx context.Context) ([]domain.TrackRecord, error) {
		return adapter.GetLikedTracks(ctx, likedPoolSize)
	})
	if len(liked) == 0 {
		return nil
	}

	s.rngMu.Lock()
	order := s.rng.Perm(len(liked))
	s.rngMu.Unlock()

	sampled := likedSeeds
	if len(order) < sampled {
		sampled = len(order)
	}

	seen := map[string]bool{}
	for _, track := range existing {
		seen[track.ID] = true
	}

	var collected []domain.TrackRecord
	for _, idx := range order[:sampled] {
		seed := liked[idx]
		query := seed.Title
		if len(seed.Artists) > 0 {
			query += " " + seed.Artists[0]
		}
		found := s.fetch(ctx, "search similar "+query, func(ctx context.Context) ([]domain.TrackRecord, error) {
			return adapter.SearchTracks(ctx, query)
		})
		collected = appendTagged(collected, seen, found, domain.SourceLikedSimilar, perSeedResults, seed.ID)
	}
	return collected
}

// fallbackPass fills an otherwise-empty result from new releases and the
// global chart, both cache-backed since they change slowly.
func (s *recommendService) fallbackPass(ctx context.Context, adapter provider.Adapter) []domain.TrackRecord {
	var collected []domain.TrackRecord
	seen := map[string]bool{}

	releases := s.cached(ctx, adapter.Name()+":new_releases", func(ctx context.Context) ([]domain.TrackRecord, error) {
		return adapter.GetNewReleases(ctx)
	})
	collected = appendTagged(collected, seen, releases, domain.SourceNewReleases, fallbackSlice, "")

	chart := s.cached(ctx, adapter.Name()+":chart", func(ctx context.Context) ([]domain.TrackRecord, error) {
		return adapter.GetChart(ctx)
	})
	collected = appendTagged(collected, seen, chart, domain.SourceChart, fallbackSlice, "")

	return collected
}

func (s *recommendService) socialPass(ctx context.Context, adapter provider.Adapter) []domain.TrackRecord {
	found := s.fetch(ctx, "provider recommendations", func(ctx context.Context) ([]domain.TrackRecord, error) {
		return adapter.GetRecommendations(ctx, socialResults)
	})
	collected := make([]domain.TrackRecord, 0, len(found))
	seen := map[string]bool{}
	return appendTagged(collected, seen, found, domain.SourceProviderRecommendation, socialResults, "")
}

// fetch runs one upstream call under a timeout. Failure is logged and yields
// nil, never an error.
func (s *recommendService) fetch(ctx context.Context, label string, call func(ctx context.Context) ([]domain.TrackRecord, error)) []domain.TrackRecord {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	tracks, err := call(callCtx)
	if err != nil {
		log.Warnf("recommend: %s: %v", label, err)
		return nil
	}
	return tracks
}

func (s *recommendService) cached(ctx context.Context, key string, call func(ctx context.Context) ([]domain.TrackRecord, error)) []domain.TrackRecord {
	if tracks, ok := s.cache.GetTracks(ctx, key); ok {
		return tracks
	}
	tracks := s.fetch(ctx, key, call)
	if len(tracks) > 0 {
		s.cache.SetTracks(ctx, key, tracks)
	}
	return tracks
}

// appendTagged copies up to limit tracks into collected, tagging each with
// source and skipping ids already seen plus the optional seed id.
func appendTagged(collected []domain.TrackRecord, seen map[string]bool, found []domain.TrackRecord, source string, limit int, excludeID string) []domain.TrackRecord {
	kept := 0
	for _, track := range found {
		if kept >= limit {
			break
		}
		if track.ID == "" || track.ID == excludeID || seen[track.ID] {
			continue
		}
		seen[track.ID] = true
		track.Source = source
		collected = append(collected, track)
		kept++
	}
	return collected
}

// dedupByID keeps the first occurrence of every id, so earlier passes keep
// their more specific source tag.
func dedupByID(tracks []domain.TrackRecord) []domain.TrackRecord {
	seen := make(map[string]bool, len(tracks))
	result := make([]domain.TrackRecord, 0, len(tracks))
	for _, track := range tracks {
		if seen[track.ID] {
			continue
		}
		seen[track.ID] = true
		result = append(result, track)
	}
	return result
}

// counter is a frequency map that remembers first-seen order so ties rank
// stably.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) top(n int) []string {
	ranked := make([]string, len(c.order))
	copy(ranked, c.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.counts[ranked[i]] > c.counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
