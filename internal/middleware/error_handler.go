package middleware

import (
	"github.com/Agus3160/blog-web-app-server-go/pkg/apperror"
	"github.com/Agus3160/blog-web-app-server-go/pkg/logger"
	"github.com/Agus3160/blog-web-app-server-go/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler recovers panics and renders any error the handler chain left
// behind. Internal diagnostics are logged here; only client-safe fields
// reach the response body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Get().Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
				)
				response.Error(c, apperror.Internal("panic in handler", "Internal Server Error"))
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		appErr := apperror.From(err)
		if appErr.HTTPStatus >= 500 {
			logger.Get().Error("request failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("name", appErr.Name),
				zap.String("detail", appErr.Message),
				zap.Error(appErr.Err),
			)
		} else {
			logger.Get().Warn("request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("name", appErr.Name),
				zap.String("detail", appErr.Message),
			)
		}
		if !c.Writer.Written() {
			response.Error(c, appErr)
		}
	}
}
