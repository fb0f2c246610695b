package middleware

import (
	"context"
	"fmt"
	"time"

	"challenge_hub/repository"
	"challenge_hub/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const activityThrottle = time.Minute

// ActivityMiddleware bumps the caller's last_active_at, which orders friend
// lists. With redis the write happens at most once per minute per user.
func ActivityMiddleware(users repository.UserRepository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		if rdb != nil {
			first, err := rdb.SetNX(ctx, fmt.Sprintf("active:%d", userID), 1, activityThrottle).Result()
			if err == nil && !first {
				c.Next()
				return
			}
		}

		touchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		if err := users.TouchActivity(touchCtx, userID, time.Now().UTC()); err != nil {
			utils.Logger().Warnw("failed to record user activity", "user_id", userID, "error", err)
		}
		cancel()

		c.Next()
	}
}
