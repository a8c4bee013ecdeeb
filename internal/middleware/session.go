package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionConfig for the Redis-backed session.
type SessionConfig struct {
	Secret            string
	RedisURL          string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	sessionCookieName  = "lifelink.sid"
	SessionRedisPrefix = "session:" // exported for logout (Del key)
	sessionMaxAge      = 24 * time.Hour
)

// SessionUser is the shape stored in the session under "user".
type SessionUser struct {
	UserID   string `json:"user_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// Session returns a Fiber middleware that loads/saves the session from Redis.
func Session(cfg SessionConfig) (fiber.Handler, *redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)
	return SessionWithClient(cfg, rdb), rdb, nil
}

// SessionWithClient is Session with an injected Redis client (tests use
// miniredis here).
func SessionWithClient(cfg SessionConfig, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(sessionCookieName)
		key := SessionRedisPrefix + sessionID

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(context.Background(), key).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals("session_data", data)
		if u, ok := data["user"]; ok {
			c.Locals("user", u)
		}
		c.Locals("session_id", sessionID)

		err := c.Next()

		// Persist if a handler logged someone in or touched the session.
		if c.Locals("session_dirty") == true {
			if sessionID == "" {
				sessionID = uuid.New().String()
			}
			if user := c.Locals("user"); user != nil {
				data["user"] = user
			} else {
				delete(data, "user")
			}
			b, _ := json.Marshal(data)
			_ = rdb.Set(context.Background(), SessionRedisPrefix+sessionID, b, sessionMaxAge).Err()
			c.Cookie(&fiber.Cookie{
				Name:     sessionCookieName,
				Value:    sessionID,
				MaxAge:   int(sessionMaxAge.Seconds()),
				HTTPOnly: true,
				Secure:   cfg.IsProduction || cfg.AllowCrossSiteDev,
				SameSite: sameSite(cfg),
				Path:     "/",
			})
		}
		return err
	}
}

func sameSite(cfg SessionConfig) string {
	if cfg.AllowCrossSiteDev || cfg.IsProduction {
		return "None"
	}
	return "Lax"
}

// SetSessionUser marks the session dirty with the given user payload.
func SetSessionUser(c *fiber.Ctx, user *SessionUser) {
	c.Locals("user", map[string]interface{}{
		"user_id":  user.UserID,
		"fullname": user.Fullname,
		"email":    user.Email,
	})
	c.Locals("session_dirty", true)
}

// ClearSessionUser logs the caller out.
func ClearSessionUser(c *fiber.Ctx) {
	c.Locals("user", nil)
	c.Locals("session_dirty", true)
}
