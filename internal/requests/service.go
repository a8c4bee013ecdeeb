package requests

import (
	"context"
	"fmt"
	"time"

	"lifelink-backend/internal/models"
	"lifelink-backend/internal/pkg/apperr"
	"lifelink-backend/internal/pkg/pagination"
	"lifelink-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AlertPipeline matches donors and records alerts for a freshly published
// request. It runs after the publish write has committed and must never make
// the publish fail; implementations swallow their own errors.
type AlertPipeline interface {
	FanOut(ctx context.Context, req models.BloodRequest)
}

type Service struct {
	DB *gorm.DB
	// Alerts is invoked fire-and-forget on the edge into pending. Nil
	// disables fan-out (tests that only exercise the lifecycle).
	Alerts AlertPipeline
}

type CreateRequestInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	BloodType   string   `json:"blood_type"`
	Urgency     string   `json:"urgency"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	City        string   `json:"city"`
	Governorate string   `json:"governorate"`
}

func (s *Service) CreateRequest(ctx context.Context, ownerID uuid.UUID, in CreateRequestInput) (*models.BloodRequest, error) {
	if in.Title == "" {
		return nil, apperr.BadRequest("Title is required")
	}
	if !validation.IsValidBloodType(in.BloodType) {
		return nil, apperr.BadRequest("Invalid blood type")
	}
	urgency := in.Urgency
	if urgency == "" {
		urgency = models.UrgencyNormal
	}
	if !validation.IsValidUrgency(urgency) {
		return nil, apperr.BadRequest("Invalid urgency")
	}
	req := &models.BloodRequest{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		BloodType:   in.BloodType,
		Urgency:     urgency,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		City:        in.City,
		Governorate: in.Governorate,
		Status:      models.RequestDraft,
	}
	if err := s.DB.WithContext(ctx).Create(req).Error; err != nil {
		return nil, apperr.Internal("Failed to create request", err)
	}
	return req, nil
}

// UpdateRequest edits a draft. Published requests are immutable except for
// status transitions.
func (s *Service) UpdateRequest(ctx context.Context, id uint, ownerID uuid.UUID, in CreateRequestInput) (*models.BloodRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != ownerID {
		return nil, apperr.Forbidden("Not the request owner")
	}
	if req.Status != models.RequestDraft {
		return nil, apperr.BadRequest("Only draft requests can be edited")
	}
	if !validation.IsValidBloodType(in.BloodType) {
		return nil, apperr.BadRequest("Invalid blood type")
	}
	if !validation.IsValidUrgency(in.Urgency) {
		return nil, apperr.BadRequest("Invalid urgency")
	}
	updates := map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"blood_type":  in.BloodType,
		"urgency":     in.Urgency,
		"latitude":    in.Latitude,
		"longitude":   in.Longitude,
		"city":        in.City,
		"governorate": in.Governorate,
	}
	if err := s.DB.WithContext(ctx).Model(req).Updates(updates).Error; err != nil {
		return nil, apperr.Internal("Failed to update request", err)
	}
	return s.load(ctx, id)
}

// PublishRequest moves a draft into pending and triggers donor matching.
// PublishedAt/ExpiresAt are stamped only on the first entry into pending and
// never recomputed afterwards. The status predicate in the UPDATE makes the
// transition safe against a concurrent publish or cancel: whoever loses the
// race affects zero rows.
func (s *Service) PublishRequest(ctx context.Context, id uint, ownerID uuid.UUID) (*models.BloodRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != ownerID {
		return nil, apperr.Forbidden("Not the request owner")
	}
	if !CanTransition(req.Status, models.RequestPending) {
		return nil, apperr.BadRequest(fmt.Sprintf("Cannot transition request from %s to %s", req.Status, models.RequestPending))
	}

	now := time.Now()
	updates := map[string]interface{}{"status": models.RequestPending}
	if req.PublishedAt == nil {
		updates["published_at"] = now
		updates["expires_at"] = now.Add(models.RequestTTL)
	}
	res := s.DB.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("id = ? AND status = ?", id, req.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, apperr.Internal("Failed to publish request", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.BadRequest("Request changed state, try again")
	}

	published, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// Fan-out runs after the commit and is never awaited; a matching or
	// alerting failure must not surface to the publisher.
	if s.Alerts != nil {
		snapshot := *published
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Uint("request_id", snapshot.ID).Msg("alert fan-out panicked")
				}
			}()
			s.Alerts.FanOut(context.Background(), snapshot)
		}()
	}
	return published, nil
}

// TransitionRequest applies an owner-driven edge (confirmed, completed,
// cancelled). Expiry is the sweeper's job and is rejected here.
func (s *Service) TransitionRequest(ctx context.Context, id uint, ownerID uuid.UUID, target string) (*models.BloodRequest, error) {
	switch target {
	case models.RequestConfirmed, models.RequestCompleted, models.RequestCancelled:
	default:
		return nil, apperr.BadRequest(fmt.Sprintf("Invalid target status %q", target))
	}
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != ownerID {
		return nil, apperr.Forbidden("Not the request owner")
	}
	if !CanTransition(req.Status, target) {
		return nil, apperr.BadRequest(fmt.Sprintf("Cannot transition request from %s to %s", req.Status, target))
	}
	res := s.DB.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("id = ? AND status = ?", id, req.Status).
		Update("status", target)
	if res.Error != nil {
		return nil, apperr.Internal("Failed to transition request", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.BadRequest("Request changed state, try again")
	}
	return s.load(ctx, id)
}

func (s *Service) GetRequest(ctx context.Context, id uint) (*models.BloodRequest, error) {
	return s.load(ctx, id)
}

// ListMine returns the owner's requests, newest first, cursor-paginated.
func (s *Service) ListMine(ctx context.Context, ownerID uuid.UUID, cursor *uint, limit int) (pagination.Page[models.BloodRequest], error) {
	limit = pagination.ClampLimit(limit)
	var items []models.BloodRequest
	err := s.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Scopes(pagination.Scope(cursor)).
		Limit(limit + 1).
		Find(&items).Error
	if err != nil {
		return pagination.Page[models.BloodRequest]{}, apperr.Internal("Failed to list requests", err)
	}
	return pagination.Collect(items, limit, func(r models.BloodRequest) uint { return r.ID }), nil
}

// ListOpen returns pending requests, newest first, cursor-paginated.
func (s *Service) ListOpen(ctx context.Context, cursor *uint, limit int) (pagination.Page[models.BloodRequest], error) {
	limit = pagination.ClampLimit(limit)
	var items []models.BloodRequest
	err := s.DB.WithContext(ctx).
		Where("status = ?", models.RequestPending).
		Scopes(pagination.Scope(cursor)).
		Limit(limit + 1).
		Find(&items).Error
	if err != nil {
		return pagination.Page[models.BloodRequest]{}, apperr.Internal("Failed to list open requests", err)
	}
	return pagination.Collect(items, limit, func(r models.BloodRequest) uint { return r.ID }), nil
}

func (s *Service) load(ctx context.Context, id uint) (*models.BloodRequest, error) {
	var req models.BloodRequest
	if err := s.DB.WithContext(ctx).First(&req, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Request not found")
		}
		return nil, apperr.Internal("Failed to load request", err)
	}
	return &req, nil
}
