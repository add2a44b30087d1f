package main

import (
	"fmt"

	"github.com/MicahParks/keyfunc"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"teamboard/api"
	"teamboard/config"
	"teamboard/events"
	"teamboard/storage"
	"teamboard/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	logger := log.New()
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	store := storage.New(db, cfg.MessagePageSize)
	if err := store.AutoMigrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var backing api.Storage = store
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		backing = storage.NewCache(store, redis.NewClient(redisOpts), cfg.CacheTTL)
	}

	var auth *api.Auth
	if cfg.AuthTestSecret != "" {
		auth = api.NewTestAuth([]byte(cfg.AuthTestSecret))
		logger.Warn("running with shared-secret auth; not for production")
	} else {
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", cfg.AuthDomain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewAuth(jwks, cfg.AuthAudience, "https://"+cfg.AuthDomain+"/")
	}

	bus := events.New(logger)
	hub := stream.NewHub(bus, logger)
	defer hub.Close()

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.Register(e, backing, auth, bus, hub, api.Options{
		KeepaliveInterval: cfg.KeepaliveInterval,
		MessagePageSize:   cfg.MessagePageSize,
		MessagePageMax:    cfg.MessagePageMax,
	}, logger)

	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}
