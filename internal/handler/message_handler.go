package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkchat/internal/auth"
	"inkchat/internal/chatapi"
	"inkchat/internal/transport/httpdto"
)

type MessageHandler struct {
	api *chatapi.ChatAPI
}

func NewMessageHandler(api *chatapi.ChatAPI) *MessageHandler {
	return &MessageHandler{api: api}
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	msg, err := h.api.SendMessage(c.Request.Context(), req.ConversationID, userID, req.ReceiverID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessage(msg)))
}

func (h *MessageHandler) List(c *gin.Context) {
	conversationID := c.Query("conversation_id")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation_id", "INVALID_REQUEST"))
		return
	}

	if _, ok := auth.UserIDFromContext(c.Request.Context()); !ok {
		unauthorized(c)
		return
	}

	items, err := h.api.Messages(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListMessagesResponse{
		Messages: httpdto.FromMessageSlice(items),
	}))
}
