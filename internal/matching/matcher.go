package matching

import (
	"context"
	"sort"

	"lifelink-backend/internal/models"
	"lifelink-backend/internal/pkg/apperr"
	"lifelink-backend/internal/pkg/geo"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Radius policy: higher-severity requests widen the candidate pool.
const (
	RadiusStandardKm = 50.0
	RadiusWideKm     = 80.0
	MatchLimit       = 100
)

// DonorMatch is what leaves the matcher. Exact coordinates stay inside this
// package; downstream consumers see city/governorate and a distance only.
type DonorMatch struct {
	DonorID     uint      `json:"donor_id"`
	UserID      uuid.UUID `json:"user_id"`
	BloodType   string    `json:"blood_type"`
	City        string    `json:"city"`
	Governorate string    `json:"governorate"`
	DistanceKm  float64   `json:"distance_km"`
}

type Matcher struct {
	DB *gorm.DB
}

// RadiusKm returns the search radius for an urgency level.
func RadiusKm(urgency string) float64 {
	if urgency == models.UrgencyUrgent || urgency == models.UrgencyCritical {
		return RadiusWideKm
	}
	return RadiusStandardKm
}

// FindDonors returns available, blood-type-compatible donors within the
// urgency radius, closest first, capped at MatchLimit. A request without
// coordinates or a blood type matches nobody: publishing must never be
// blocked by a missing location, so this is a silent empty result.
//
// The SQL bounding box is a coarse prefilter; the exact haversine cut and
// the distance ordering happen here.
func (m *Matcher) FindDonors(ctx context.Context, req models.BloodRequest) ([]DonorMatch, error) {
	if req.Latitude == nil || req.Longitude == nil || req.BloodType == "" {
		return []DonorMatch{}, nil
	}
	donorTypes := CompatibleDonorTypes(req.BloodType)
	if len(donorTypes) == 0 {
		return []DonorMatch{}, nil
	}

	lat, lng := *req.Latitude, *req.Longitude
	radius := RadiusKm(req.Urgency)
	minLat, maxLat, minLng, maxLng := geo.BoundingBox(lat, lng, radius)

	var donors []models.Donor
	err := m.DB.WithContext(ctx).
		Where("available = ?", true).
		Where("blood_type IN ?", donorTypes).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLng, maxLng).
		Find(&donors).Error
	if err != nil {
		return nil, apperr.Internal("Failed to query donors", err)
	}

	matches := make([]DonorMatch, 0, len(donors))
	for _, d := range donors {
		dist := geo.DistanceKm(lat, lng, *d.Latitude, *d.Longitude)
		if dist > radius {
			continue
		}
		matches = append(matches, DonorMatch{
			DonorID:     d.ID,
			UserID:      d.UserID,
			BloodType:   d.BloodType,
			City:        d.City,
			Governorate: d.Governorate,
			DistanceKm:  dist,
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].DistanceKm < matches[j].DistanceKm })
	if len(matches) > MatchLimit {
		matches = matches[:MatchLimit]
	}
	return matches, nil
}
