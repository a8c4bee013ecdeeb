package donors

import (
	"context"
	"time"

	"lifelink-backend/internal/models"
	"lifelink-backend/internal/pkg/apperr"
	"lifelink-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	DB *gorm.DB
}

type UpsertProfileInput struct {
	BloodType    string     `json:"blood_type"`
	Available    *bool      `json:"available"`
	LastDonation *time.Time `json:"last_donation"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	City         string     `json:"city"`
	Governorate  string     `json:"governorate"`
}

// UpsertProfile creates or updates the caller's donor profile. The unique
// index on user_id plus ON CONFLICT DO UPDATE keeps concurrent first-time
// upserts from creating two profiles for one user.
func (s *Service) UpsertProfile(ctx context.Context, userID uuid.UUID, in UpsertProfileInput) (*models.Donor, error) {
	if !validation.IsValidBloodType(in.BloodType) {
		return nil, apperr.BadRequest("Invalid blood type")
	}
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	donor := &models.Donor{
		UserID:       userID,
		BloodType:    in.BloodType,
		Available:    available,
		LastDonation: in.LastDonation,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		City:         in.City,
		Governorate:  in.Governorate,
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"blood_type", "available", "last_donation",
			"latitude", "longitude", "city", "governorate", "updated_at",
		}),
	}).Create(donor).Error
	if err != nil {
		return nil, apperr.Internal("Failed to save donor profile", err)
	}
	return s.GetProfile(ctx, userID)
}

// GetProfile loads the caller's donor profile.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Donor, error) {
	var donor models.Donor
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&donor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Donor profile not found")
		}
		return nil, apperr.Internal("Failed to load donor profile", err)
	}
	return &donor, nil
}

// SetAvailability toggles the available flag.
func (s *Service) SetAvailability(ctx context.Context, userID uuid.UUID, available bool) (*models.Donor, error) {
	res := s.DB.WithContext(ctx).Model(&models.Donor{}).
		Where("user_id = ?", userID).
		Update("available", available)
	if res.Error != nil {
		return nil, apperr.Internal("Failed to update availability", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("Donor profile not found")
	}
	return s.GetProfile(ctx, userID)
}
