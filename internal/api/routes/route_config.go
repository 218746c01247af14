package routes

import (
	"itired-backend/internal/api/handlers"
	"itired-backend/internal/middleware"
	"itired-backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App             *fiber.App
	UserHandler     handlers.UserHandler
	MusicHandler    handlers.MusicHandler
	CurrencyHandler handlers.CurrencyHandler
	ShopHandler     handlers.ShopHandler
	SocialHandler   handlers.SocialHandler
	Middleware      middleware.Middleware
	JWTService      jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Music()
	c.Economy()
	c.Shop()
	c.Social()
	c.GuestRoute()
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/verify", c.UserHandler.VerifyEmail)
		user.Post("/login", c.UserHandler.Login)
		user.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.Me)
		user.Patch("/me", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.UpdateProfile)
		user.Post("/tokens", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.SaveToken)
		user.Get("/settings", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.GetSettings)
		user.Patch("/settings", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.UpdateSettings)
	}
}

func (c *Config) Music() {
	music := c.App.Group("/api/v1/music", c.Middleware.AuthMiddleware(c.JWTService))
	{
		music.Get("/recommendations", c.MusicHandler.GetRecommendations)
		music.Get("/search", c.MusicHandler.Search)
		music.Get("/playlists", c.MusicHandler.GetPlaylists)
		music.Get("/playlists/:id/tracks", c.MusicHandler.GetPlaylistTracks)
		music.Get("/liked", c.MusicHandler.GetLikedTracks)
		music.Post("/tracks/:id/play", c.MusicHandler.PlayTrack)
		music.Get("/stats", c.MusicHandler.GetListeningStats)
	}
}

func (c *Config) Economy() {
	economy := c.App.Group("/api/v1/economy", c.Middleware.AuthMiddleware(c.JWTService))
	{
		economy.Get("/balance", c.CurrencyHandler.GetBalance)
		economy.Get("/transactions", c.CurrencyHandler.GetTransactions)
		economy.Post("/daily-reward", c.CurrencyHandler.ClaimDailyReward)
	}

	admin := economy.Group("/admin", c.Middleware.AdminMiddleware())
	{
		admin.Post("/grant", c.CurrencyHandler.GrantCurrency)
	}
}

func (c *Config) Shop() {
	shop := c.App.Group("/api/v1/shop", c.Middleware.AuthMiddleware(c.JWTService))
	{
		shop.Get("/catalog", c.ShopHandler.GetCatalog)
		shop.Get("/categories", c.ShopHandler.GetCategories)
		shop.Post("/items/:id/purchase", c.ShopHandler.Purchase)
		shop.Post("/equip", c.ShopHandler.Equip)
		shop.Get("/equipped", c.ShopHandler.GetEquipped)
		shop.Get("/inventory", c.ShopHandler.GetInventory)
	}

	admin := shop.Group("/admin", c.Middleware.AdminMiddleware())
	{
		admin.Post("/categories", c.ShopHandler.CreateCategory)
		admin.Post("/items", c.ShopHandler.CreateItem)
		admin.Delete("/items/:id", c.ShopHandler.DeactivateItem)
	}
}

func (c *Config) Social() {
	social := c.App.Group("/api/v1/social", c.Middleware.AuthMiddleware(c.JWTService))
	{
		social.Get("/friends", c.SocialHandler.GetFriends)
		social.Post("/friends/:id", c.SocialHandler.AddFriend)
		social.Post("/friends/:id/accept", c.SocialHandler.AcceptFriend)
		social.Get("/activity", c.SocialHandler.GetActivityFeed)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
