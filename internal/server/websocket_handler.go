package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"inkchat/internal/auth"
	"inkchat/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades connections onto the invalidation stream.
type WebSocketHandler struct {
	hub       *Hub
	jwtSecret string
	log       *logger.Logger
}

func NewWebSocketHandler(hub *Hub, jwtSecret string, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, jwtSecret: jwtSecret, log: log}
}

func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := h.extractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	userID, err := auth.ParseToken(h.jwtSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("ws: upgrade failed for user %s: %v", userID, err)
		return
	}

	client := NewClient(h.hub, conn, userID, h.log)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (h *WebSocketHandler) extractToken(c *gin.Context) string {
	// Browsers cannot set headers on websocket dials, so allow a query
	// parameter too.
	if token := c.Query("token"); token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return ""
}
