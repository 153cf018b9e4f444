package handler

import (
	"github.com/Agus3160/blog-web-app-server-go/internal/service"
	"github.com/Agus3160/blog-web-app-server-go/pkg/response"
	"github.com/gin-gonic/gin"
)

// UserHandler handles user directory endpoints
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a UserHandler
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/user (admin only)
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.OK(c, "", users)
}

// GetByUsername handles GET /api/user/:username
func (h *UserHandler) GetByUsername(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.Error(err)
		return
	}
	response.OK(c, "", user)
}

// Delete handles DELETE /api/user/:id (owner or admin)
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.OK(c, "User deleted successfully", nil)
}
