package handler

import (
	"github.com/Agus3160/blog-web-app-server-go/internal/dto"
	"github.com/Agus3160/blog-web-app-server-go/internal/middleware"
	"github.com/Agus3160/blog-web-app-server-go/internal/service"
	"github.com/Agus3160/blog-web-app-server-go/pkg/apperror"
	"github.com/Agus3160/blog-web-app-server-go/pkg/response"
	"github.com/gin-gonic/gin"
)

// PostHandler handles post CRUD endpoints
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a PostHandler
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// Create handles POST /api/posts/upload
func (h *PostHandler) Create(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error(), "Invalid request body"))
		return
	}

	session := middleware.Session(c)
	post, err := h.posts.Create(c.Request.Context(), session.UserID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Created(c, "Post created successfully", post)
}

// List handles GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.OK(c, "", posts)
}

// GetByID handles GET /api/posts/:id
func (h *PostHandler) GetByID(c *gin.Context) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.OK(c, "", post)
}

// ListByAuthor handles GET /api/posts/author/:username
func (h *PostHandler) ListByAuthor(c *gin.Context) {
	posts, err := h.posts.ListByAuthor(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.Error(err)
		return
	}
	response.OK(c, "", posts)
}

// Update handles PUT /api/posts/:id (owner or admin)
func (h *PostHandler) Update(c *gin.Context) {
	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error(), "Invalid request body"))
		return
	}

	post, err := h.posts.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	response.OK(c, "Post updated successfully", post)
}

// Delete handles DELETE /api/posts/:id (owner or admin)
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.OK(c, "Post deleted successfully", nil)
}
