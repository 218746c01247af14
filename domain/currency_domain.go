package domain

import (
	"errors"
	"time"
)

const (
	ReasonDailyReward = "daily_reward"
	ReasonListenTrack = "listen_track"
	ReasonAdminGrant  = "admin_grant"

	ListenRewardAmount = 1
	DailyRewardMin     = 10
	DailyRewardMax     = 25
)

var (
	MessageSuccessGetBalance      = "balance retrieved successfully"
	MessageSuccessClaimReward     = "daily reward claimed successfully"
	MessageSuccessGetTransactions = "transaction history retrieved successfully"
	MessageSuccessGrantCurrency   = "currency granted successfully"

	MessageFailedGetBalance      = "failed to retrieve balance"
	MessageFailedClaimReward     = "failed to claim daily reward"
	MessageFailedGetTransactions = "failed to retrieve transaction history"
	MessageFailedGrantCurrency   = "failed to grant currency"

	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrRewardAlreadyClaimed = errors.New("daily reward already claimed today")
)

type (
	BalanceResponse struct {
		Balance int `json:"balance"`
	}

	ClaimRewardResponse struct {
		Amount  int `json:"amount"`
		Balance int `json:"balance"`
	}

	CurrencyTransaction struct {
		ID        string    `json:"id"`
		Amount    int       `json:"amount"`
		Reason    string    `json:"reason"`
		CreatedAt time.Time `json:"created_at"`
	}

	GrantCurrencyRequest struct {
		UserID string `json:"user_id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1"`
		Reason string `json:"reason" validate:"omitempty,max=200"`
	}
)
