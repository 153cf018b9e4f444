package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Agus3160/blog-web-app-server-go/internal/domain"
	"github.com/Agus3160/blog-web-app-server-go/internal/service"
	"github.com/Agus3160/blog-web-app-server-go/pkg/apperror"
	"github.com/Agus3160/blog-web-app-server-go/pkg/response"
	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key holding the verified session payload
const SessionKey = "session"

// OwnerLookup resolves a route resource ID to the user ID that owns it
type OwnerLookup func(ctx context.Context, resourceID string) (string, error)

// Session returns the verified session from the gin context. It is only
// valid on routes behind Authenticated.
func Session(c *gin.Context) *domain.SessionPayload {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*domain.SessionPayload)
	return session
}

// Authenticated verifies the Bearer access token and stores its session
// payload in the context. An expired token and an invalid one both yield
// 401, under distinct error names so clients can trigger a refresh.
func Authenticated(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortWith(c, apperror.New(http.StatusUnauthorized, "TokenMissing",
				"missing bearer token", "Authentication required"))
			return
		}

		session, err := tokens.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			name := "TokenInvalid"
			if errors.Is(err, service.ErrTokenExpired) {
				name = "TokenExpired"
			}
			abortWith(c, apperror.New(http.StatusUnauthorized, name,
				"access token rejected", "Invalid or expired token").WithCause(err))
			return
		}

		c.Set(SessionKey, session)
		c.Next()
	}
}

// RequireAdmin allows only sessions with the ADMIN role. Must run after
// Authenticated.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := Session(c)
		if session == nil || session.Role != domain.RoleAdmin {
			abortWith(c, apperror.Forbidden("admin role required", "Forbidden"))
			return
		}
		c.Next()
	}
}

// RequireOwner allows the resource owner or an admin. The route parameter
// named by param identifies the resource; lookup maps it to the owner's
// user ID. Admins skip the lookup entirely.
func RequireOwner(lookup OwnerLookup, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := Session(c)
		if session == nil {
			abortWith(c, apperror.Unauthorized("no session on owner-guarded route", "Authentication required"))
			return
		}
		if session.Role == domain.RoleAdmin {
			c.Next()
			return
		}

		ownerID, err := lookup(c.Request.Context(), c.Param(param))
		if err != nil {
			abortWith(c, err)
			return
		}
		if ownerID != session.UserID {
			abortWith(c, apperror.Forbidden("caller does not own the resource", "Forbidden"))
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
