package handlers

import (
	"errors"
	"strconv"

	"itired-backend/domain"
	"itired-backend/internal/api/presenters"
	"itired-backend/pkg/currency"
	"itired-backend/pkg/social"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	CurrencyHandler interface {
		GetBalance(c *fiber.Ctx) error
		GetTransactions(c *fiber.Ctx) error
		ClaimDailyReward(c *fiber.Ctx) error
		GrantCurrency(c *fiber.Ctx) error
	}

	currencyHandler struct {
		currencyService currency.CurrencyService
		socialService   social.SocialService
		validator       *validator.Validate
	}
)

func NewCurrencyHandler(currencyService currency.CurrencyService, socialService social.SocialService, validator *validator.Validate) CurrencyHandler {
	return &currencyHandler{
		currencyService: currencyService,
		socialService:   socialService,
		validator:       validator,
	}
}

func (h *currencyHandler) GetBalance(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	balance, err := h.currencyService.GetBalance(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetBalance, err)
	}

	return presenters.SuccessResponse(c, balance, fiber.StatusOK, domain.MessageSuccessGetBalance)
}

func (h *currencyHandler) GetTransactions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	transactions, count, err := h.currencyService.GetTransactions(c.Context(), userID, page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetTransactions, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"transactions": transactions,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       count,
			"total_pages": (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetTransactions)
}

func (h *currencyHandler) ClaimDailyReward(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.currencyService.ClaimDailyReward(c.Context(), userID)
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, domain.ErrRewardAlreadyClaimed) {
			status = fiber.StatusConflict
		}
		return presenters.ErrorResponse(c, status, domain.MessageFailedClaimReward, err)
	}

	h.socialService.RecordActivity(c.Context(), userID, domain.ActivityRewardClaimed, strconv.Itoa(res.Amount))

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessClaimReward)
}

func (h *currencyHandler) GrantCurrency(c *fiber.Ctx) error {
	req := new(domain.GrantCurrencyRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGrantCurrency, err)
	}

	balance, err := h.currencyService.GrantCurrency(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGrantCurrency, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{"balance": balance}, fiber.StatusOK, domain.MessageSuccessGrantCurrency)
}
