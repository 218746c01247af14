package history

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"itired-backend/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) HistoryRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.UserSettings{},
		&entities.ListeningHistory{},
	))
	return NewHistoryRepository(db)
}

func TestRecentEntriesNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, &entities.ListeningHistory{
			ID:        uuid.New(),
			UserID:    userID,
			TrackID:   fmt.Sprintf("yandex_%d", i),
			TrackData: "{}",
			PlayedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := repo.RecentEntries(ctx, userID.String(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "yandex_4", entries[0].TrackID)
	assert.Equal(t, "yandex_2", entries[2].TrackID)

	count, err := repo.CountForUser(ctx, userID.String())
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}

func TestRecentEntriesScopedToUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, repo.Append(ctx, &entities.ListeningHistory{
		ID: uuid.New(), UserID: alice, TrackID: "a", TrackData: "{}", PlayedAt: time.Now(),
	}))
	require.NoError(t, repo.Append(ctx, &entities.ListeningHistory{
		ID: uuid.New(), UserID: bob, TrackID: "b", TrackData: "{}", PlayedAt: time.Now(),
	}))

	entries, err := repo.RecentEntries(ctx, alice.String(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].TrackID)
}
