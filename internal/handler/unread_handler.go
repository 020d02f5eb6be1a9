package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkchat/internal/auth"
	"inkchat/internal/chatapi"
	"inkchat/internal/transport/httpdto"
)

type UnreadHandler struct {
	api *chatapi.ChatAPI
}

func NewUnreadHandler(api *chatapi.ChatAPI) *UnreadHandler {
	return &UnreadHandler{api: api}
}

// Global reports the caller's unread total across all conversations.
func (h *UnreadHandler) Global(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	count := h.api.GlobalUnread(c.Request.Context(), userID)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.UnreadCountResponse{Count: count}))
}
