package currency

import (
	"context"
	"errors"

	"itired-backend/domain"
	"itired-backend/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	CurrencyRepository interface {
		// Apply atomically adjusts the user's balance and appends the matching
		// transaction row. A negative amount that would take the balance below
		// zero fails with ErrInsufficientFunds and leaves no state behind.
		Apply(ctx context.Context, userID uuid.UUID, amount int, reason string, rewardDay *string) (int, error)
		// ApplyTx is Apply inside an existing transaction, for callers that
		// need the balance change atomic with their own writes.
		ApplyTx(tx *gorm.DB, userID uuid.UUID, amount int, reason string, rewardDay *string) (int, error)

		GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
		SumTransactions(ctx context.Context, userID uuid.UUID) (int, error)
		GetTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.CurrencyTransaction, int64, error)
		HasRewardOn(ctx context.Context, userID uuid.UUID, day string) (bool, error)
	}

	currencyRepository struct {
		db *gorm.DB
	}
)

func NewCurrencyRepository(db *gorm.DB) CurrencyRepository {
	return &currencyRepository{
		db: db,
	}
}

// lockForUpdate takes a row lock on engines that have one. SQLite allows a
// single writer per database, which gives the same serialization.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *currencyRepository) Apply(ctx context.Context, userID uuid.UUID, amount int, reason string, rewardDay *string) (int, error) {
	var balance int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = r.ApplyTx(tx, userID, amount, reason, rewardDay)
		return err
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *currencyRepository) ApplyTx(tx *gorm.DB, userID uuid.UUID, amount int, reason string, rewardDay *string) (int, error) {
	// Account row is created lazily and locked for the rest of the
	// transaction, serializing concurrent mutations per user.
	var account entities.CurrencyAccount
	err := lockForUpdate(tx).
		Where("user_id = ?", userID).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account = entities.CurrencyAccount{ID: uuid.New(), UserID: userID, Balance: 0}
		if err := tx.Create(&account).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	if amount < 0 && account.Balance+amount < 0 {
		return 0, domain.ErrInsufficientFunds
	}

	newBalance := account.Balance + amount
	if err := tx.Model(&entities.CurrencyAccount{}).
		Where("id = ?", account.ID).
		Update("balance", newBalance).Error; err != nil {
		return 0, err
	}

	transaction := &entities.CurrencyTransaction{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		RewardDay: rewardDay,
	}
	if err := tx.Create(transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, domain.ErrRewardAlreadyClaimed
		}
		return 0, err
	}

	return newBalance, nil
}

func (r *currencyRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	var account entities.CurrencyAccount
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil // no account yet, balance is 0
		}
		return 0, err
	}
	return account.Balance, nil
}

func (r *currencyRepository) SumTransactions(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&entities.CurrencyTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0) as total").
		Row().Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *currencyRepository) GetTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.CurrencyTransaction, int64, error) {
	var transactions []*entities.CurrencyTransaction
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.CurrencyTransaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, count, nil
}

func (r *currencyRepository) HasRewardOn(ctx context.Context, userID uuid.UUID, day string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.CurrencyTransaction{}).
		Where("user_id = ? AND reward_day = ?", userID, day).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
