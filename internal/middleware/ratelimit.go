package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/custodian-app/upkeep/internal/modules/serializer"
)

// RateLimit returns a middleware enforcing a fixed-window per-user request
// cap in Redis. Runs after UserAuth. When Redis is unreachable the request
// passes; generation is already serialized per asset downstream.
func RateLimit(rdb *redis.Client, log *zap.Logger, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if perMinute <= 0 {
			c.Next()
			return
		}
		uid, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		window := time.Now().Unix() / 60
		key := fmt.Sprintf("ratelimit:generate:%s:%d", uid, window)

		ctx := c.Request.Context()
		n, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if n == 1 {
			rdb.Expire(ctx, key, time.Minute)
		}
		if n > int64(perMinute) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				serializer.Err(http.StatusTooManyRequests, "too many generation requests", nil))
			return
		}
		c.Next()
	}
}
