package migration

import (
	"fmt"
	"log"

	"itired-backend/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	models := []any{
		&entities.User{},
		&entities.UserSettings{},
		&entities.CurrencyAccount{},
		&entities.CurrencyTransaction{},
		&entities.ShopCategory{},
		&entities.ShopItem{},
		&entities.UserInventory{},
		&entities.ListeningHistory{},
		&entities.Friend{},
		&entities.UserActivity{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			log.Fatalf("Error migrating %T: %v", model, err)
			return err
		}
	}

	if err := SeedShop(db); err != nil {
		log.Fatalf("Error seeding shop catalog: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}

type seedItem struct {
	Name   string
	Type   string
	Price  int
	Data   string
	Rarity string
}

// SeedShop inserts the default catalog once. Existing categories are left
// untouched so admin edits survive restarts.
func SeedShop(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entities.ShopCategory{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	catalog := map[string]struct {
		Description string
		Icon        string
		Items       []seedItem
	}{
		"Themes": {
			Description: "Color themes for the player interface",
			Icon:        "palette",
			Items: []seedItem{
				{"Neon Night", "theme", 50, `{"primary":"#0ff0fc","background":"#0a0a1a"}`, "common"},
				{"Sunset Wave", "theme", 75, `{"primary":"#ff6b9d","background":"#2d1b4e"}`, "common"},
				{"Deep Forest", "theme", 100, `{"primary":"#4caf50","background":"#0d1f12"}`, "rare"},
				{"Golden Hour", "theme", 200, `{"primary":"#ffd700","background":"#1a1408"}`, "epic"},
			},
		},
		"Avatars": {
			Description: "Profile avatar frames and pictures",
			Icon:        "face",
			Items: []seedItem{
				{"Vinyl Spinner", "avatar", 40, `{"frame":"vinyl"}`, "common"},
				{"Cassette Classic", "avatar", 60, `{"frame":"cassette"}`, "common"},
				{"Crystal Frame", "avatar", 150, `{"frame":"crystal"}`, "rare"},
			},
		},
		"Banners": {
			Description: "Profile page banners",
			Icon:        "image",
			Items: []seedItem{
				{"Equalizer Bars", "profile_banner", 45, `{"pattern":"equalizer"}`, "common"},
				{"Starry Stage", "profile_banner", 90, `{"pattern":"stars"}`, "rare"},
				{"Aurora Waves", "profile_banner", 180, `{"pattern":"aurora"}`, "epic"},
			},
		},
		"Badges": {
			Description: "Collectible profile badges",
			Icon:        "military_tech",
			Items: []seedItem{
				{"Early Bird", "badge", 25, `{"icon":"sunrise"}`, "common"},
				{"Night Owl", "badge", 25, `{"icon":"moon"}`, "common"},
				{"Melomaniac", "badge", 120, `{"icon":"headphones"}`, "rare"},
			},
		},
		"Effects": {
			Description: "Visual effects for the now-playing view",
			Icon:        "auto_awesome",
			Items: []seedItem{
				{"Particle Rain", "effect", 80, `{"effect":"particles"}`, "rare"},
				{"Pulse Glow", "effect", 110, `{"effect":"pulse"}`, "rare"},
			},
		},
		"Animations": {
			Description: "Animated flourishes for the player",
			Icon:        "animation",
			Items: []seedItem{
				{"Spinning Disc", "animation", 70, `{"animation":"spin"}`, "common"},
				{"Bouncing Notes", "animation", 130, `{"animation":"notes"}`, "rare"},
			},
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for name, category := range catalog {
			entry := &entities.ShopCategory{
				ID:          uuid.New(),
				Name:        name,
				Description: category.Description,
				Icon:        category.Icon,
			}
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
			for _, item := range category.Items {
				if err := tx.Create(&entities.ShopItem{
					ID:         uuid.New(),
					Name:       item.Name,
					Type:       item.Type,
					CategoryID: entry.ID,
					Price:      item.Price,
					Data:       item.Data,
					Rarity:     item.Rarity,
					IsActive:   true,
				}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
