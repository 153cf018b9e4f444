package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Agus3160/blog-web-app-server-go/pkg/apperror"
	"github.com/Agus3160/blog-web-app-server-go/pkg/logger"
	appredis "github.com/Agus3160/blog-web-app-server-go/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit caps requests per client IP with a fixed window counter in
// Redis. On Redis failure the request is allowed; the limiter protects
// against abuse, it is not a correctness gate.
func RateLimit(client *appredis.Client, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.ClientIP())

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Get().Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(ctx, key, window).Err(); err != nil {
				logger.Get().Warn("rate limiter expire failed", zap.Error(err))
			}
		}

		if count > int64(limit) {
			abortWith(c, apperror.New(http.StatusTooManyRequests, "TooManyRequests",
				fmt.Sprintf("rate limit hit for %s", key),
				"Too many attempts, try again later"))
			return
		}
		c.Next()
	}
}
