package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkchat/config"
	"inkchat/internal/chatapi"
	"inkchat/internal/handler"
	"inkchat/internal/middleware"
	"inkchat/internal/redis"
	"inkchat/internal/services"
	"inkchat/pkg/logger"
)

type RouterDeps struct {
	API     *chatapi.ChatAPI
	Users   *services.UserService
	Hub     *Hub
	Limiter *redis.RateLimiter
	Log     *logger.Logger
}

func NewRouter(cfg *config.Config, deps RouterDeps) *gin.Engine {
	if cfg.AppMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(deps.Log))
	r.Use(middleware.ErrorHandler(deps.Log))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	wsHandler := NewWebSocketHandler(deps.Hub, cfg.JWTSecret, deps.Log)
	r.GET("/ws", wsHandler.Handle)

	conversations := handler.NewConversationHandler(deps.API)
	messages := handler.NewMessageHandler(deps.API)
	unread := handler.NewUnreadHandler(deps.API)
	users := handler.NewUserHandler(deps.Users)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		api.POST("/conversations/start", conversations.Start)
		api.GET("/conversations", conversations.List)
		api.POST("/conversations/:id/read", conversations.MarkRead)
		api.GET("/conversations/:id/unread", conversations.Unread)

		api.POST("/messages", middleware.MessageRateLimitMiddleware(deps.Limiter), messages.Send)
		api.GET("/messages", messages.List)

		api.GET("/unread", unread.Global)

		api.POST("/users", users.Create)
		api.GET("/users", users.List)
		api.GET("/users/search", users.Search)
		api.GET("/users/:id", users.GetByID)
	}

	return r
}
