package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateWindow = 24 * time.Hour

// IssueRateLimiter caps how many issues one identity can submit per day.
// A limit of zero or less disables the check.
func IssueRateLimiter(client *redis.Client, queuePrefix string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || client == nil {
			c.Next()
			return
		}

		viewer := ViewerFrom(c)
		if viewer.IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ctx := c.Request.Context()

		// Create individual key for each user
		userKey := queuePrefix + ":" + viewer.UserID

		count, err := client.Incr(ctx, userKey).Result()
		if err != nil {
			slog.Error("rate limiter incr failed", "key", userKey, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			if err := client.Expire(ctx, userKey, rateWindow).Err(); err != nil {
				slog.Error("rate limiter expire failed", "key", userKey, "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
				return
			}
		}

		if count > int64(limit) {
			retryAfter, err := client.TTL(ctx, userKey).Result()
			if err != nil || retryAfter < 0 {
				slog.Warn("rate limiter ttl lookup failed", "key", userKey, "error", err)
				retryAfter = rateWindow
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Next()

		// Rejected or failed submissions give their slot back.
		if c.Writer.Status() >= http.StatusBadRequest {
			if err := client.Decr(context.WithoutCancel(ctx), userKey).Err(); err != nil {
				slog.Error("rate limiter decr failed", "key", userKey, "error", err)
			}
		}
	}
}
