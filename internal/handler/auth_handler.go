package handler

import (
	"net/http"

	"github.com/Agus3160/blog-web-app-server-go/internal/dto"
	"github.com/Agus3160/blog-web-app-server-go/internal/service"
	"github.com/Agus3160/blog-web-app-server-go/pkg/apperror"
	"github.com/Agus3160/blog-web-app-server-go/pkg/response"
	"github.com/gin-gonic/gin"
)

// RefreshCookieName is the cookie carrying the refresh token. It is httpOnly
// and secure; the browser client never reads it.
const RefreshCookieName = "refreshToken"

// AuthHandler handles authentication and session endpoints
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error(), "Invalid request body"))
		return
	}

	if err := h.auth.SignUp(c.Request.Context(), &req); err != nil {
		c.Error(err)
		return
	}
	response.Created(c, "User created successfully", nil)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error(), "Invalid request body"))
		return
	}

	session, refreshToken, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	h.setRefreshCookie(c, refreshToken)
	response.OK(c, "Logged in successfully", session)
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshCookieName)
	if err != nil {
		c.Error(apperror.Unauthorized("refresh cookie missing", "No active session"))
		return
	}

	session, newRefresh, err := h.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.clearRefreshCookie(c)
		c.Error(err)
		return
	}

	h.setRefreshCookie(c, newRefresh)
	response.OK(c, "Session refreshed", session)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so logout is
// purely clearing the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearRefreshCookie(c)
	response.OK(c, "Logged out successfully", nil)
}

// ResetPasswordEmail handles POST /api/auth/reset-password-send-email
func (h *AuthHandler) ResetPasswordEmail(c *gin.Context) {
	var req dto.ResetPasswordEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error(), "Invalid request body"))
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		c.Error(err)
		return
	}
	response.OK(c, "Password reset email sent", nil)
}

// ResetPassword handles POST /api/auth/reset-password/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error(), "Invalid request body"))
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		c.Error(err)
		return
	}
	response.OK(c, "Password reset successfully", nil)
}

// ChangePassword handles PUT /api/user/password. Identity comes from the
// refresh cookie, not the access token.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshCookieName)
	if err != nil {
		c.Error(apperror.Unauthorized("refresh cookie missing", "No active session"))
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error(), "Invalid request body"))
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), refreshToken, &req); err != nil {
		c.Error(err)
		return
	}
	response.OK(c, "Password updated successfully", nil)
}

// UpdateProfile handles PUT /api/user. A successful update re-issues both
// tokens so the client's session matches the new identity.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshCookieName)
	if err != nil {
		c.Error(apperror.Unauthorized("refresh cookie missing", "No active session"))
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error(), "Invalid request body"))
		return
	}

	session, newRefresh, err := h.auth.UpdateProfile(c.Request.Context(), refreshToken, &req)
	if err != nil {
		c.Error(err)
		return
	}

	h.setRefreshCookie(c, newRefresh)
	response.OK(c, "Profile updated successfully", session)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(RefreshCookieName, token, int(h.auth.RefreshTTL().Seconds()), "/", "", true, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(RefreshCookieName, "", -1, "/", "", true, true)
}
