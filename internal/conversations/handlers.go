package conversations

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

// POST /api/v1/conversations/open
func (h *Handlers) Open(c *fiber.Ctx) error {
	var body struct {
		RequestID uint `json:"request_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.RequestID == 0 {
		return response.Error(c, "BAD_REQUEST", "request_id is required", fiber.StatusBadRequest, nil)
	}
	conv, err := h.Service.Open(c.Context(), body.RequestID, middleware.CurrentUserID(c))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Conversation opened", conv, nil)
}

// GET /api/v1/conversations/list?cursor=&limit=
func (h *Handlers) List(c *fiber.Ctx) error {
	page, err := h.Service.List(c.Context(), middleware.CurrentUserID(c),
		pagination.ParseCursor(c.Query("cursor")), c.QueryInt("limit"))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Conversations fetched", page.Items, fiber.Map{
		"next_cursor":   page.NextCursor,
		"has_next_page": page.HasNextPage,
	})
}

// GET /api/v1/conversations/get/:id
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "BAD_REQUEST", "Invalid conversation id", fiber.StatusBadRequest, nil)
	}
	conv, err := h.Service.GetByID(c.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Conversation fetched", conv, nil)
}

// POST /api/v1/conversations/send-message
func (h *Handlers) SendMessage(c *fiber.Ctx) error {
	var body struct {
		ConversationID uint   `json:"conversation_id"`
		Text           string `json:"text"`
	}
	if err := c.BodyParser(&body); err != nil || body.ConversationID == 0 {
		return response.Error(c, "BAD_REQUEST", "conversation_id and text are required", fiber.StatusBadRequest, nil)
	}
	msg, err := h.Service.SendMessage(c.Context(), body.ConversationID, middleware.CurrentUserID(c), body.Text)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Message sent", msg, nil)
}

// GET /api/v1/conversations/messages/:id?cursor=&limit=
func (h *Handlers) Messages(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "BAD_REQUEST", "Invalid conversation id", fiber.StatusBadRequest, nil)
	}
	page, err := h.Service.ListMessages(c.Context(), id, middleware.CurrentUserID(c),
		pagination.ParseCursor(c.Query("cursor")), c.QueryInt("limit"))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Messages fetched", page.Items, fiber.Map{
		"next_cursor":   page.NextCursor,
		"has_next_page": page.HasNextPage,
	})
}

// POST /api/v1/conversations/mark-read
func (h *Handlers) MarkRead(c *fiber.Ctx) error {
	var body struct {
		ConversationID uint `json:"conversation_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.ConversationID == 0 {
		return response.Error(c, "BAD_REQUEST", "conversation_id is required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.MarkAsRead(c.Context(), body.ConversationID, middleware.CurrentUserID(c)); err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Conversation marked read", nil, nil)
}

// GET /api/v1/conversations/unread-count
func (h *Handlers) UnreadCount(c *fiber.Ctx) error {
	count, err := h.Service.UnreadCount(c.Context(), middleware.CurrentUserID(c))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Unread count fetched", fiber.Map{"unread": count}, nil)
}

func parseID(c *fiber.Ctx) (uint, error) {
	n, err := strconv.ParseUint(c.Params("id"), 10, 64)
	return uint(n), err
}
