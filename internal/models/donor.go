package models

import (
	"time"

	"github.com/google/uuid"
)

// Donor is a self-service donor profile. At most one per user (unique index).
// Coordinates are nullable: a donor without a location simply never matches.
type Donor struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	User         *User      `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	BloodType    string     `gorm:"column:blood_type;type:varchar(3);not null;index" json:"blood_type"`
	Available    bool       `gorm:"column:available;index" json:"available"`
	LastDonation *time.Time `gorm:"column:last_donation" json:"last_donation"`
	Latitude     *float64   `gorm:"column:latitude" json:"latitude"`
	Longitude    *float64   `gorm:"column:longitude" json:"longitude"`
	City         string     `gorm:"column:city" json:"city"`
	Governorate  string     `gorm:"column:governorate" json:"governorate"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
