package main

import (
	"context"
	"fmt"
	"log"

	"inkchat/config"
	"inkchat/internal/bridge"
	"inkchat/internal/cache"
	"inkchat/internal/chatapi"
	"inkchat/internal/server"
	"inkchat/internal/services"
	"inkchat/internal/store"
	"inkchat/pkg/database"
	"inkchat/pkg/events"
	"inkchat/pkg/logger"

	redisx "inkchat/internal/redis"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		mode = logger.ProductionMode
	}
	appLog := logger.New(mode)
	logger.SetGlobalLogger(appLog)

	var (
		docStore services.ProfileStore
		limiter  *redisx.RateLimiter
	)

	switch cfg.StoreDriver {
	case "memory":
		docStore = store.NewMemoryStore()
		appLog.Infof("using in-memory document store")
	default:
		redisClient := redisx.NewClient(redisx.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		broker := events.NewRedisBroker(redisClient, appLog)
		limiter = redisx.NewRateLimiter(redisClient, redisx.DefaultRateLimitConfig())

		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		docStore = store.NewPostgresStore(db, broker, appLog)
	}

	queryCache := cache.New()
	userService := services.NewUserService(docStore, appLog)
	unreadService := services.NewUnreadService(docStore, appLog)
	messageService := services.NewMessageService(docStore, appLog)
	directoryService := services.NewDirectoryService(docStore, userService, unreadService, appLog)
	api := chatapi.New(directoryService, messageService, unreadService, queryCache, appLog)

	hub := server.NewHub(appLog)
	go hub.Run()
	defer hub.Stop()

	liveBridge := bridge.New(docStore, queryCache, hub.BroadcastInvalidation, appLog)
	if err := liveBridge.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start realtime bridge: %v", err)
	}
	defer liveBridge.Close()

	r := server.NewRouter(cfg, server.RouterDeps{
		API:     api,
		Users:   userService,
		Hub:     hub,
		Limiter: limiter,
		Log:     appLog,
	})

	appLog.Infof("starting server on port %s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
