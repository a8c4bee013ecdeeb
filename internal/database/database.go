package database

import (
	"lifelink-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN. PreferSimpleProtocol disables prepared
// statement caching to avoid 42P05 ("prepared statement already exists")
// when using connection poolers (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all models. The unique indexes it creates
// (donor per user, alert per request+donor, conversation per triple) are the
// store-level guarantees the services rely on for idempotent writes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Donor{},
		&models.BloodRequest{},
		&models.DonorAlert{},
		&models.Conversation{},
		&models.Message{},
	)
}
