package config

import (
	"math/rand"
	"os"
	"time"

	"itired-backend/internal/api/handlers"
	"itired-backend/internal/api/routes"
	"itired-backend/internal/middleware"
	"itired-backend/internal/utils"
	"itired-backend/internal/utils/storage"
	"itired-backend/pkg/cache"
	"itired-backend/pkg/currency"
	"itired-backend/pkg/history"
	"itired-backend/pkg/jwt"
	"itired-backend/pkg/music"
	"itired-backend/pkg/provider"
	"itired-backend/pkg/recommend"
	"itired-backend/pkg/shop"
	"itired-backend/pkg/social"
	"itired-backend/pkg/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	// rand.Rand is not safe for concurrent use, so every consumer gets its own.
	currencyRNG := rand.New(rand.NewSource(time.Now().UnixNano()))
	recommendRNG := rand.New(rand.NewSource(time.Now().UnixNano() + 1))
	trackCache := cache.New(utils.GetConfig("REDIS_ADDR"), utils.GetConfig("REDIS_PASSWORD"), 15*time.Minute)

	// Repository
	userRepository := user.NewUserRepository(db)
	historyRepository := history.NewHistoryRepository(db)
	currencyRepository := currency.NewCurrencyRepository(db)
	shopRepository := shop.NewShopRepository(db, currencyRepository)
	socialRepository := social.NewSocialRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(userRepository, jwtService)
	resolver := provider.NewResolver(
		userService,
		utils.GetConfig("YANDEX_API_BASE"),
		utils.GetConfig("VK_API_BASE"),
	)
	currencyService := currency.NewCurrencyService(currencyRepository, currencyRNG)
	socialService := social.NewSocialService(socialRepository, historyRepository)
	shopService := shop.NewShopService(shopRepository, s3, socialService)
	musicService := music.NewMusicService(resolver, historyRepository, currencyService, socialService)
	recommendService := recommend.NewRecommendService(resolver, historyRepository, trackCache, recommendRNG)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	musicHandler := handlers.NewMusicHandler(musicService, recommendService)
	currencyHandler := handlers.NewCurrencyHandler(currencyService, socialService, validator)
	shopHandler := handlers.NewShopHandler(shopService, validator)
	socialHandler := handlers.NewSocialHandler(socialService)

	// routes
	routesConfig := routes.Config{
		App:             app,
		UserHandler:     userHandler,
		MusicHandler:    musicHandler,
		CurrencyHandler: currencyHandler,
		ShopHandler:     shopHandler,
		SocialHandler:   socialHandler,
		Middleware:      middlewares,
		JWTService:      jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
