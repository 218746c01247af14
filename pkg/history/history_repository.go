package history

import (
	"context"

	"itired-backend/entities"

	"gorm.io/gorm"
)

type (
	HistoryRepository interface {
		Append(ctx context.Context, entry *entities.ListeningHistory) error
		RecentEntries(ctx context.Context, userID string, limit int) ([]*entities.ListeningHistory, error)
		CountForUser(ctx context.Context, userID string) (int64, error)
	}

	historyRepository struct {
		db *gorm.DB
	}
)

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{
		db: db,
	}
}

func (r *historyRepository) Append(ctx context.Context, entry *entities.ListeningHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *historyRepository) RecentEntries(ctx context.Context, userID string, limit int) ([]*entities.ListeningHistory, error) {
	var entries []*entities.ListeningHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("played_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) CountForUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ListeningHistory{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
