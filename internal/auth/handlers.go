package auth

import (
	"context"

	"lifelink-backend/internal/middleware"
	"lifelink-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	DB         *gorm.DB
	UserFinder UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// Register POST /api/v1/auth/register — create account, no session yet.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "BAD_REQUEST", "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := RegisterUser(h.DB, req)
	if err != nil {
		switch err {
		case ErrInvalidFullname, ErrInvalidEmail, ErrWeakPassword:
			return response.Error(c, "BAD_REQUEST", err.Error(), fiber.StatusBadRequest, nil)
		case ErrEmailTaken:
			return response.Error(c, "BAD_REQUEST", err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "INTERNAL", "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "User registered", fiber.Map{
		"user": fiber.Map{
			"user_id":  user.UserID.String(),
			"fullname": user.Fullname,
			"email":    user.Email,
		},
	}, nil)
}

// Login POST /api/v1/auth/login — authenticate and create a session.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "INTERNAL", "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "BAD_REQUEST", ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}
	if req.Email == "" || req.Password == "" {
		return response.Error(c, "BAD_REQUEST", ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(req.Email, req.Password)
	if err != nil {
		switch err {
		case ErrEmailPasswordRequired:
			return response.Error(c, "BAD_REQUEST", err.Error(), fiber.StatusBadRequest, nil)
		case ErrInvalidEmail, ErrIncorrectPassword:
			return response.Unauthorized(c, err.Error())
		default:
			return response.Error(c, "INTERNAL", "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	middleware.SetSessionUser(c, &middleware.SessionUser{
		UserID:   user.UserID.String(),
		Fullname: user.Fullname,
		Email:    user.Email,
	})

	return response.Success(c, "Login successful", fiber.Map{
		"user": fiber.Map{
			"user_id":  user.UserID.String(),
			"fullname": user.Fullname,
			"email":    user.Email,
		},
	}, nil)
}

// Me GET /api/v1/auth/me — return current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	m, ok := middleware.GetUser(c).(map[string]interface{})
	if !ok || m["user_id"] == nil {
		return response.Unauthorized(c, ErrNotAuthenticated.Error())
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": m}, nil)
}

// RegisterPushToken POST /api/v1/auth/register-push-token — attach a device
// token to the session user so donor alerts can reach their phone.
func (h *Handlers) RegisterPushToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "BAD_REQUEST", "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := RegisterPushToken(h.DB, middleware.CurrentUserID(c), req.Token); err != nil {
		if err == ErrPushTokenRequired {
			return response.Error(c, "BAD_REQUEST", err.Error(), fiber.StatusBadRequest, nil)
		}
		return response.Error(c, "INTERNAL", "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Push token registered", nil, nil)
}

// Logout DELETE /api/v1/auth/logout — clear session and drop the Redis key.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if sid, ok := c.Locals("session_id").(string); ok && sid != "" && h.Rdb != nil {
		_ = h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+sid).Err()
	}
	middleware.ClearSessionUser(c)
	return response.Success(c, "Logged out", nil, nil)
}
