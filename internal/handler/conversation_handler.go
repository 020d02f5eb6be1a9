package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkchat/internal/auth"
	"inkchat/internal/chatapi"
	"inkchat/internal/transport/httpdto"
)

type ConversationHandler struct {
	api *chatapi.ChatAPI
}

func NewConversationHandler(api *chatapi.ChatAPI) *ConversationHandler {
	return &ConversationHandler{api: api}
}

// Start resolves or creates the conversation with another user.
func (h *ConversationHandler) Start(c *gin.Context) {
	var req httpdto.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	conv, err := h.api.StartConversation(c.Request.Context(), userID, req.OtherUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromConversation(conv)))
}

func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	items, err := h.api.Conversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListConversationsResponse{
		Conversations: httpdto.FromEnrichedConversationSlice(items),
	}))
}

// MarkRead flips the read flag on every unread message addressed to the
// caller in the conversation.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	if err := h.api.MarkConversationRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *ConversationHandler) Unread(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	count := h.api.ConversationUnread(c.Request.Context(), c.Param("id"), userID)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.UnreadCountResponse{Count: count}))
}
