package requests

import (
	"strconv"

	"lifelink-backend/internal/middleware"
	"lifelink-backend/internal/pkg/pagination"
	"lifelink-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// POST /api/v1/requests/create-request
func (h *Handlers) CreateRequest(c *fiber.Ctx) error {
	var body CreateRequestInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "BAD_REQUEST", "Invalid request body", fiber.StatusBadRequest, nil)
	}
	req, err := h.Service.CreateRequest(c.Context(), middleware.CurrentUserID(c), body)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Request created", req, nil)
}

// PUT /api/v1/requests/update-request/:id
func (h *Handlers) UpdateRequest(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "BAD_REQUEST", "Invalid request id", fiber.StatusBadRequest, nil)
	}
	var body CreateRequestInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "BAD_REQUEST", "Invalid request body", fiber.StatusBadRequest, nil)
	}
	req, err := h.Service.UpdateRequest(c.Context(), id, middleware.CurrentUserID(c), body)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Request updated", req, nil)
}

// POST /api/v1/requests/publish-request/:id
func (h *Handlers) PublishRequest(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "BAD_REQUEST", "Invalid request id", fiber.StatusBadRequest, nil)
	}
	req, err := h.Service.PublishRequest(c.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Request published", req, nil)
}

// POST /api/v1/requests/transition-request/:id
func (h *Handlers) TransitionRequest(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "BAD_REQUEST", "Invalid request id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return response.Error(c, "BAD_REQUEST", "status is required", fiber.StatusBadRequest, nil)
	}
	req, err := h.Service.TransitionRequest(c.Context(), id, middleware.CurrentUserID(c), body.Status)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Request updated", req, nil)
}

// GET /api/v1/requests/get-request/:id
func (h *Handlers) GetRequest(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "BAD_REQUEST", "Invalid request id", fiber.StatusBadRequest, nil)
	}
	req, err := h.Service.GetRequest(c.Context(), id)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Request fetched", req, nil)
}

// GET /api/v1/requests/my-requests?cursor=&limit=
func (h *Handlers) MyRequests(c *fiber.Ctx) error {
	page, err := h.Service.ListMine(c.Context(), middleware.CurrentUserID(c),
		pagination.ParseCursor(c.Query("cursor")), c.QueryInt("limit"))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Requests fetched", page.Items, pageMeta(page.NextCursor, page.HasNextPage))
}

// GET /api/v1/requests/open-requests?cursor=&limit=
func (h *Handlers) OpenRequests(c *fiber.Ctx) error {
	page, err := h.Service.ListOpen(c.Context(),
		pagination.ParseCursor(c.Query("cursor")), c.QueryInt("limit"))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Open requests fetched", page.Items, pageMeta(page.NextCursor, page.HasNextPage))
}

func parseID(c *fiber.Ctx) (uint, error) {
	n, err := strconv.ParseUint(c.Params("id"), 10, 64)
	return uint(n), err
}

func pageMeta(next *string, hasNext bool) fiber.Map {
	return fiber.Map{"next_cursor": next, "has_next_page": hasNext}
}
