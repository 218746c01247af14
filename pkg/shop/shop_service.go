package shop

import (
	"context"
	"encoding/json"
	"errors"

	"itired-backend/domain"
	"itired-backend/entities"
	"itired-backend/internal/utils/storage"
	"itired-backend/pkg/social"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ShopService interface {
		GetCatalog(ctx context.Context, userID string) ([]*domain.ShopItem, error)
		GetCategories(ctx context.Context) ([]*domain.ShopCategory, error)
		Purchase(ctx context.Context, userID, itemID string) (*domain.PurchaseResponse, error)
		Equip(ctx context.Context, userID string, req domain.EquipRequest) error
		GetEquipped(ctx context.Context, userID string) (map[string]*domain.EquippedItem, error)
		GetInventory(ctx context.Context, userID string) ([]*domain.InventoryEntry, error)

		CreateCategory(ctx context.Context, req domain.CreateCategoryRequest) (*domain.ShopCategory, error)
		CreateItem(ctx context.Context, req domain.CreateItemRequest) (*domain.ShopItem, error)
		DeactivateItem(ctx context.Context, itemID string) error
	}

	shopService struct {
		shopRepository ShopRepository
		awsS3          storage.AwsS3
		socialService  social.SocialService
	}
)

func NewShopService(shopRepository ShopRepository, awsS3 storage.AwsS3, socialService social.SocialService) ShopService {
	return &shopService{
		shopRepository: shopRepository,
		awsS3:          awsS3,
		socialService:  socialService,
	}
}

func (s *shopService) GetCatalog(ctx context.Context, userID string) ([]*domain.ShopItem, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	items, err := s.shopRepository.GetActiveItems(ctx)
	if err != nil {
		return nil, err
	}
	owned, err := s.shopRepository.GetOwnedItemIDs(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.ShopItem, 0, len(items))
	for _, item := range items {
		result = append(result, itemToDomain(item, owned[item.ID]))
	}
	return result, nil
}

func (s *shopService) GetCategories(ctx context.Context) ([]*domain.ShopCategory, error) {
	categories, err := s.shopRepository.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.ShopCategory, 0, len(categories))
	for _, category := range categories {
		result = append(result, &domain.ShopCategory{
			ID:          category.ID.String(),
			Name:        category.Name,
			Description: category.Description,
			Icon:        category.Icon,
		})
	}
	return result, nil
}

func (s *shopService) Purchase(ctx context.Context, userID, itemID string) (*domain.PurchaseResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	itemUUID, err := uuid.Parse(itemID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	balance, err := s.shopRepository.Purchase(ctx, userUUID, itemUUID)
	if err != nil {
		return nil, err
	}

	s.socialService.RecordActivity(ctx, userID, domain.ActivityItemPurchased, itemID)
	return &domain.PurchaseResponse{Balance: balance}, nil
}

func (s *shopService) Equip(ctx context.Context, userID string, req domain.EquipRequest) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	itemUUID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return domain.ErrParseUUID
	}
	return s.shopRepository.Equip(ctx, userUUID, itemUUID)
}

func (s *shopService) GetEquipped(ctx context.Context, userID string) (map[string]*domain.EquippedItem, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	entries, err := s.shopRepository.GetEquipped(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	equipped := make(map[string]*domain.EquippedItem, len(entries))
	for _, entry := range entries {
		if entry.Item == nil {
			continue
		}
		equipped[entry.Item.Type] = &domain.EquippedItem{
			ItemID: entry.ItemID.String(),
			Name:   entry.Item.Name,
			Data:   rawData(entry.Item.Data),
		}
	}
	return equipped, nil
}

func (s *shopService) GetInventory(ctx context.Context, userID string) ([]*domain.InventoryEntry, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	entries, err := s.shopRepository.GetUserInventory(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.InventoryEntry, 0, len(entries))
	for _, entry := range entries {
		item := &domain.InventoryEntry{
			ItemID:      entry.ItemID.String(),
			Equipped:    entry.Equipped,
			PurchasedAt: entry.PurchasedAt,
		}
		if entry.Item != nil {
			item.Name = entry.Item.Name
			item.Type = entry.Item.Type
			item.Rarity = entry.Item.Rarity
			item.Data = rawData(entry.Item.Data)
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *shopService) CreateCategory(ctx context.Context, req domain.CreateCategoryRequest) (*domain.ShopCategory, error) {
	category := &entities.ShopCategory{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	}
	if err := s.shopRepository.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return &domain.ShopCategory{
		ID:          category.ID.String(),
		Name:        category.Name,
		Description: category.Description,
		Icon:        category.Icon,
	}, nil
}

func (s *shopService) CreateItem(ctx context.Context, req domain.CreateItemRequest) (*domain.ShopItem, error) {
	categoryUUID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	if _, err := s.shopRepository.GetCategoryByID(ctx, categoryUUID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}

	data := map[string]any{}
	if req.Data != "" {
		if err := json.Unmarshal([]byte(req.Data), &data); err != nil {
			return nil, err
		}
	}

	itemID := uuid.New()
	if req.Icon != nil {
		objectKey, err := s.awsS3.UploadFile(itemID.String(), req.Icon, "shop-items", storage.AllowImage...)
		if err != nil {
			log.Errorf("upload shop item icon: %v", err)
			return nil, err
		}
		data["image_url"] = s.awsS3.GetPublicLinkKey(objectKey)
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	rarity := req.Rarity
	if rarity == "" {
		rarity = "common"
	}

	item := &entities.ShopItem{
		ID:         itemID,
		Name:       req.Name,
		Type:       req.Type,
		CategoryID: categoryUUID,
		Price:      req.Price,
		Data:       string(encoded),
		Rarity:     rarity,
		IsActive:   true,
	}
	if err := s.shopRepository.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return itemToDomain(item, false), nil
}

func (s *shopService) DeactivateItem(ctx context.Context, itemID string) error {
	itemUUID, err := uuid.Parse(itemID)
	if err != nil {
		return domain.ErrParseUUID
	}
	return s.shopRepository.DeactivateItem(ctx, itemUUID)
}

func itemToDomain(item *entities.ShopItem, owned bool) *domain.ShopItem {
	result := &domain.ShopItem{
		ID:     item.ID.String(),
		Name:   item.Name,
		Type:   item.Type,
		Price:  item.Price,
		Data:   rawData(item.Data),
		Rarity: item.Rarity,
		Owned:  owned,
	}
	if item.Category != nil {
		result.Category = item.Category.Name
	}
	return result
}

func rawData(data string) json.RawMessage {
	if data == "" || !json.Valid([]byte(data)) {
		return nil
	}
	return json.RawMessage(data)
}
