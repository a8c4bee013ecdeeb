package donors

import (
	"context"
	"testing"

	"lifelink-backend/internal/database"
	"lifelink-backend/internal/models"
	"lifelink-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDonorsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, db
}

func f64(v float64) *float64 { return &v }

func TestUpsertProfile_CreateThenUpdate(t *testing.T) {
	svc, db := setupDonorsTest(t)
	userID := uuid.New()

	created, err := svc.UpsertProfile(context.Background(), userID, UpsertProfileInput{
		BloodType: "O-",
		Latitude:  f64(33.5138),
		Longitude: f64(36.2765),
		City:      "Damascus",
	})
	require.NoError(t, err)
	assert.Equal(t, "O-", created.BloodType)
	assert.True(t, created.Available)

	// Second upsert for the same user rewrites the same row.
	avail := false
	updated, err := svc.UpsertProfile(context.Background(), userID, UpsertProfileInput{
		BloodType: "A+",
		Available: &avail,
		City:      "Homs",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "A+", updated.BloodType)
	assert.False(t, updated.Available)
	assert.Equal(t, "Homs", updated.City)

	var count int64
	require.NoError(t, db.Model(&models.Donor{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertProfile_RejectsBadBloodType(t *testing.T) {
	svc, _ := setupDonorsTest(t)
	_, err := svc.UpsertProfile(context.Background(), uuid.New(), UpsertProfileInput{BloodType: "C+"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeBadRequest, apperr.From(err).Code)
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _ := setupDonorsTest(t)
	_, err := svc.GetProfile(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
}

func TestSetAvailability(t *testing.T) {
	svc, _ := setupDonorsTest(t)
	userID := uuid.New()
	_, err := svc.UpsertProfile(context.Background(), userID, UpsertProfileInput{BloodType: "B+"})
	require.NoError(t, err)

	donor, err := svc.SetAvailability(context.Background(), userID, false)
	require.NoError(t, err)
	assert.False(t, donor.Available)

	donor, err = svc.SetAvailability(context.Background(), userID, true)
	require.NoError(t, err)
	assert.True(t, donor.Available)

	_, err = svc.SetAvailability(context.Background(), uuid.New(), true)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
}
