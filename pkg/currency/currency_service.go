package currency

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"itired-backend/domain"

	"github.com/google/uuid"
)

type (
	CurrencyService interface {
		Credit(ctx context.Context, userID string, amount int, reason string) (int, error)
		Debit(ctx context.Context, userID string, amount int, reason string) (int, error)
		GetBalance(ctx context.Context, userID string) (*domain.BalanceResponse, error)
		GetTransactions(ctx context.Context, userID string, page, limit int) ([]*domain.CurrencyTransaction, int64, error)
		ClaimDailyReward(ctx context.Context, userID string) (*domain.ClaimRewardResponse, error)
		GrantCurrency(ctx context.Context, req domain.GrantCurrencyRequest) (int, error)
	}

	currencyService struct {
		currencyRepository CurrencyRepository
		rng                *rand.Rand
		rngMu              sync.Mutex
		now                func() time.Time
	}
)

func NewCurrencyService(currencyRepository CurrencyRepository, rng *rand.Rand) CurrencyService {
	return &currencyService{
		currencyRepository: currencyRepository,
		rng:                rng,
		now:                time.Now,
	}
}

func (s *currencyService) Credit(ctx context.Context, userID string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return 0, domain.ErrParseUUID
	}
	return s.currencyRepository.Apply(ctx, userUUID, amount, reason, nil)
}

func (s *currencyService) Debit(ctx context.Context, userID string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return 0, domain.ErrParseUUID
	}
	return s.currencyRepository.Apply(ctx, userUUID, -amount, reason, nil)
}

func (s *currencyService) GetBalance(ctx context.Context, userID string) (*domain.BalanceResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	balance, err := s.currencyRepository.GetBalance(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return &domain.BalanceResponse{Balance: balance}, nil
}

func (s *currencyService) GetTransactions(ctx context.Context, userID string, page, limit int) ([]*domain.CurrencyTransaction, int64, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, domain.ErrParseUUID
	}

	transactions, count, err := s.currencyRepository.GetTransactions(ctx, userUUID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*domain.CurrencyTransaction, 0, len(transactions))
	for _, tx := range transactions {
		result = append(result, &domain.CurrencyTransaction{
			ID:        tx.ID.String(),
			Amount:    tx.Amount,
			Reason:    tx.Reason,
			CreatedAt: tx.CreatedAt,
		})
	}
	return result, count, nil
}

// ClaimDailyReward grants a random amount once per server-local calendar day.
// The repository enforces the once-per-day rule inside the same transaction
// that writes the reward, so two concurrent claims cannot both pass.
func (s *currencyService) ClaimDailyReward(ctx context.Context, userID string) (*domain.ClaimRewardResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	day := s.now().Format("2006-01-02")
	claimed, err := s.currencyRepository.HasRewardOn(ctx, userUUID, day)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, domain.ErrRewardAlreadyClaimed
	}

	s.rngMu.Lock()
	amount := domain.DailyRewardMin + s.rng.Intn(domain.DailyRewardMax-domain.DailyRewardMin+1)
	s.rngMu.Unlock()

	balance, err := s.currencyRepository.Apply(ctx, userUUID, amount, domain.ReasonDailyReward, &day)
	if err != nil {
		return nil, err
	}

	return &domain.ClaimRewardResponse{Amount: amount, Balance: balance}, nil
}

func (s *currencyService) GrantCurrency(ctx context.Context, req domain.GrantCurrencyRequest) (int, error) {
	reason := req.Reason
	if reason == "" {
		reason = domain.ReasonAdminGrant
	}
	return s.Credit(ctx, req.UserID, req.Amount, reason)
}
