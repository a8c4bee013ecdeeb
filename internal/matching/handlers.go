package matching

import (
	"context"
	"time"

	"lifelink-backend/internal/middleware"
	"lifelink-backend/internal/models"
	"lifelink-backend/internal/pkg/apperr"
	"lifelink-backend/internal/pkg/pagination"
	"lifelink-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handlers expose the donor-facing alert inbox.
type Handlers struct {
	DB *gorm.DB
}

// GET /api/v1/alerts/my-alerts?cursor=&limit=
func (h *Handlers) MyAlerts(c *fiber.Ctx) error {
	donorID, err := h.donorID(c.Context(), middleware.CurrentUserID(c))
	if err != nil {
		return response.AppError(c, err)
	}
	limit := pagination.ClampLimit(c.QueryInt("limit"))
	cursor := pagination.ParseCursor(c.Query("cursor"))

	var alerts []models.DonorAlert
	q := h.DB.WithContext(c.Context()).
		Where("donor_id = ?", donorID).
		Preload("Request").
		Scopes(pagination.Scope(cursor)).
		Limit(limit + 1).
		Find(&alerts)
	if q.Error != nil {
		return response.AppError(c, apperr.Internal("Failed to list alerts", q.Error))
	}
	page := pagination.Collect(alerts, limit, func(a models.DonorAlert) uint { return a.ID })
	return response.Success(c, "Alerts fetched", page.Items, fiber.Map{
		"next_cursor":   page.NextCursor,
		"has_next_page": page.HasNextPage,
	})
}

// POST /api/v1/alerts/mark-alert-read
func (h *Handlers) MarkAlertRead(c *fiber.Ctx) error {
	var body struct {
		AlertID uint `json:"alert_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.AlertID == 0 {
		return response.Error(c, "BAD_REQUEST", "alert_id is required", fiber.StatusBadRequest, nil)
	}
	donorID, err := h.donorID(c.Context(), middleware.CurrentUserID(c))
	if err != nil {
		return response.AppError(c, err)
	}
	res := h.DB.WithContext(c.Context()).Model(&models.DonorAlert{}).
		Where("id = ? AND donor_id = ? AND read_at IS NULL", body.AlertID, donorID).
		Update("read_at", time.Now())
	if res.Error != nil {
		return response.AppError(c, apperr.Internal("Failed to mark alert read", res.Error))
	}
	return response.Success(c, "Alert marked read", fiber.Map{"updated": res.RowsAffected > 0}, nil)
}

func (h *Handlers) donorID(ctx context.Context, userID uuid.UUID) (uint, error) {
	var donor models.Donor
	if err := h.DB.WithContext(ctx).Where("user_id = ?", userID).First(&donor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, apperr.NotFound("Donor profile not found")
		}
		return 0, apperr.Internal("Failed to load donor profile", err)
	}
	return donor.ID, nil
}
