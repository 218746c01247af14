package handlers

import (
	"errors"

	"itired-backend/domain"
	"itired-backend/internal/api/presenters"
	"itired-backend/pkg/shop"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ShopHandler interface {
		GetCatalog(c *fiber.Ctx) error
		GetCategories(c *fiber.Ctx) error
		Purchase(c *fiber.Ctx) error
		Equip(c *fiber.Ctx) error
		GetEquipped(c *fiber.Ctx) error
		GetInventory(c *fiber.Ctx) error
		CreateCategory(c *fiber.Ctx) error
		CreateItem(c *fiber.Ctx) error
		DeactivateItem(c *fiber.Ctx) error
	}

	shopHandler struct {
		shopService shop.ShopService
		validator   *validator.Validate
	}
)

func NewShopHandler(shopService shop.ShopService, validator *validator.Validate) ShopHandler {
	return &shopHandler{
		shopService: shopService,
		validator:   validator,
	}
}

func shopErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrCategoryNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrItemAlreadyOwned):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusBadRequest
	}
}

func (h *shopHandler) GetCatalog(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	items, err := h.shopService.GetCatalog(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetCatalog, err)
	}

	return presenters.SuccessResponse(c, items, fiber.StatusOK, domain.MessageSuccessGetCatalog)
}

func (h *shopHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.shopService.GetCategories(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetCategories, err)
	}

	return presenters.SuccessResponse(c, categories, fiber.StatusOK, domain.MessageSuccessGetCategories)
}

func (h *shopHandler) Purchase(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	itemID := c.Params("id")

	res, err := h.shopService.Purchase(c.Context(), userID, itemID)
	if err != nil {
		return presenters.ErrorResponse(c, shopErrorStatus(err), domain.MessageFailedPurchase, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessPurchase)
}

func (h *shopHandler) Equip(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.EquipRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedEquip, err)
	}

	if err := h.shopService.Equip(c.Context(), userID, *req); err != nil {
		return presenters.ErrorResponse(c, shopErrorStatus(err), domain.MessageFailedEquip, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessEquip)
}

func (h *shopHandler) GetEquipped(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	equipped, err := h.shopService.GetEquipped(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetEquipped, err)
	}

	return presenters.SuccessResponse(c, equipped, fiber.StatusOK, domain.MessageSuccessGetEquipped)
}

func (h *shopHandler) GetInventory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	inventory, err := h.shopService.GetInventory(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetInventory, err)
	}

	return presenters.SuccessResponse(c, inventory, fiber.StatusOK, domain.MessageSuccessGetInventory)
}

func (h *shopHandler) CreateCategory(c *fiber.Ctx) error {
	req := new(domain.CreateCategoryRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateCategory, err)
	}

	category, err := h.shopService.CreateCategory(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateCategory, err)
	}

	return presenters.SuccessResponse(c, category, fiber.StatusCreated, domain.MessageSuccessCreateCategory)
}

func (h *shopHandler) CreateItem(c *fiber.Ctx) error {
	req := new(domain.CreateItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if file, err := c.FormFile("icon"); err == nil {
		req.Icon = file
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateItem, err)
	}

	item, err := h.shopService.CreateItem(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, shopErrorStatus(err), domain.MessageFailedCreateItem, err)
	}

	return presenters.SuccessResponse(c, item, fiber.StatusCreated, domain.MessageSuccessCreateItem)
}

func (h *shopHandler) DeactivateItem(c *fiber.Ctx) error {
	itemID := c.Params("id")

	if err := h.shopService.DeactivateItem(c.Context(), itemID); err != nil {
		return presenters.ErrorResponse(c, shopErrorStatus(err), domain.MessageFailedDeactivateItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeactivateItem)
}
