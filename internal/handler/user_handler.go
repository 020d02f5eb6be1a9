package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkchat/internal/auth"
	"inkchat/internal/services"
	"inkchat/internal/transport/httpdto"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create bootstraps the caller's profile after signup.
func (h *UserHandler) Create(c *gin.Context) {
	var req httpdto.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	profile, err := h.users.CreateProfile(c.Request.Context(), userID, req.Name, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromProfile(profile)))
}

func (h *UserHandler) List(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	items := h.users.ListAll(c.Request.Context(), userID)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListProfilesResponse{
		Users: httpdto.FromProfileSlice(items),
	}))
}

func (h *UserHandler) Search(c *gin.Context) {
	if _, ok := auth.UserIDFromContext(c.Request.Context()); !ok {
		unauthorized(c)
		return
	}

	items := h.users.Search(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListProfilesResponse{
		Users: httpdto.FromProfileSlice(items),
	}))
}

func (h *UserHandler) GetByID(c *gin.Context) {
	if _, ok := auth.UserIDFromContext(c.Request.Context()); !ok {
		unauthorized(c)
		return
	}

	profile, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("profile not found", "NOT_FOUND"))
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromProfile(*profile)))
}
