package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var startedAt = time.Now()

// Handlers exposes liveness info for the service and its stores.
type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	dbOK := false
	if h.DB != nil {
		if sqlDB, err := h.DB.DB(); err == nil {
			dbOK = sqlDB.Ping() == nil
		}
	}
	redisOK := false
	if h.Rdb != nil {
		redisOK = h.Rdb.Ping(context.Background()).Err() == nil
	}
	return c.JSON(fiber.Map{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		"database":       dbOK,
		"redis":          redisOK,
	})
}
