package handlers

import (
	"errors"
	"strconv"

	"itired-backend/domain"
	"itired-backend/internal/api/presenters"
	"itired-backend/pkg/social"

	"github.com/gofiber/fiber/v2"
)

type (
	SocialHandler interface {
		GetFriends(c *fiber.Ctx) error
		AddFriend(c *fiber.Ctx) error
		AcceptFriend(c *fiber.Ctx) error
		GetActivityFeed(c *fiber.Ctx) error
	}

	socialHandler struct {
		socialService social.SocialService
	}
)

func NewSocialHandler(socialService social.SocialService) SocialHandler {
	return &socialHandler{
		socialService: socialService,
	}
}

func (h *socialHandler) GetFriends(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	friends, err := h.socialService.GetFriends(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetFriends, err)
	}

	return presenters.SuccessResponse(c, friends, fiber.StatusOK, domain.MessageSuccessGetFriends)
}

func (h *socialHandler) AddFriend(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	friendID := c.Params("id")

	if err := h.socialService.AddFriend(c.Context(), userID, friendID); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, domain.ErrFriendRequestExists) {
			status = fiber.StatusConflict
		}
		return presenters.ErrorResponse(c, status, domain.MessageFailedAddFriend, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusCreated, domain.MessageSuccessAddFriend)
}

func (h *socialHandler) AcceptFriend(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	requesterID := c.Params("id")

	if err := h.socialService.AcceptFriend(c.Context(), userID, requesterID); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, domain.ErrFriendRequestNotFound) {
			status = fiber.StatusNotFound
		}
		return presenters.ErrorResponse(c, status, domain.MessageFailedAcceptFriend, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessAcceptFriend)
}

func (h *socialHandler) GetActivityFeed(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	limit, err := strconv.Atoi(c.Query("limit", "30"))
	if err != nil || limit < 1 {
		limit = 30
	}

	feed, err := h.socialService.GetActivityFeed(c.Context(), userID, limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetActivity, err)
	}

	return presenters.SuccessResponse(c, feed, fiber.StatusOK, domain.MessageSuccessGetActivity)
}
