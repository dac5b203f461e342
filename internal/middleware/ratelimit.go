package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit enforces a per-IP requests-per-second limit backed by Redis
// INCR counters. A Redis failure lets the request through; the limiter is a
// guard, not a dependency.
func RateLimit(rdb *redis.Client, perSecond int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if perSecond <= 0 {
			return c.Next()
		}

		ctx := c.Context()
		now := time.Now()
		key := fmt.Sprintf("rl:ip:%s:%d", c.IP(), now.Unix())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, 2*time.Second).Err(); err != nil {
				return c.Next()
			}
		}

		if count > int64(perSecond) {
			c.Set("X-RateLimit-Limit", strconv.Itoa(perSecond))
			c.Set("X-RateLimit-Remaining", "0")
			c.Set("Retry-After", "1")

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate_limit_exceeded",
				"limit":       perSecond,
				"retry_after": 1,
			})
		}

		return c.Next()
	}
}
