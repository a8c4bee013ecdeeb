package donors

import (
	"lifelink-backend/internal/middleware"
	"lifelink-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// POST /api/v1/donors/upsert-profile
func (h *Handlers) UpsertProfile(c *fiber.Ctx) error {
	var body UpsertProfileInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "BAD_REQUEST", "Invalid request body", fiber.StatusBadRequest, nil)
	}
	donor, err := h.Service.UpsertProfile(c.Context(), middleware.CurrentUserID(c), body)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Donor profile saved", donor, nil)
}

// GET /api/v1/donors/my-profile
func (h *Handlers) MyProfile(c *fiber.Ctx) error {
	donor, err := h.Service.GetProfile(c.Context(), middleware.CurrentUserID(c))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Donor profile fetched", donor, nil)
}

// PATCH /api/v1/donors/set-availability
func (h *Handlers) SetAvailability(c *fiber.Ctx) error {
	var body struct {
		Available *bool `json:"available"`
	}
	if err := c.BodyParser(&body); err != nil || body.Available == nil {
		return response.Error(c, "BAD_REQUEST", "available is required", fiber.StatusBadRequest, nil)
	}
	donor, err := h.Service.SetAvailability(c.Context(), middleware.CurrentUserID(c), *body.Available)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Availability updated", donor, nil)
}
