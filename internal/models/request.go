package models

import (
	"time"

	"github.com/google/uuid"
)

// Blood request statuses.
const (
	RequestDraft     = "draft"
	RequestPending   = "pending"
	RequestConfirmed = "confirmed"
	RequestCompleted = "completed"
	RequestCancelled = "cancelled"
	RequestExpired   = "expired"
)

// Urgency levels. Urgent and critical widen the matching radius.
const (
	UrgencyLow      = "low"
	UrgencyNormal   = "normal"
	UrgencyUrgent   = "urgent"
	UrgencyCritical = "critical"
)

// RequestTTL is how long a published request stays open before the sweeper
// expires it, and how long a conversation stays open before it closes.
const RequestTTL = 48 * time.Hour

// BloodRequest is an urgent request for blood donation. PublishedAt and
// ExpiresAt are set exactly once, on the first transition into pending.
type BloodRequest struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OwnerID     uuid.UUID  `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`
	Owner       *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	BloodType   string     `gorm:"column:blood_type;type:varchar(3);not null" json:"blood_type"`
	Urgency     string     `gorm:"column:urgency;type:varchar(10);not null;default:normal" json:"urgency"`
	Latitude    *float64   `gorm:"column:latitude" json:"latitude"`
	Longitude   *float64   `gorm:"column:longitude" json:"longitude"`
	City        string     `gorm:"column:city" json:"city"`
	Governorate string     `gorm:"column:governorate" json:"governorate"`
	Status      string     `gorm:"column:status;type:varchar(10);not null;default:draft;index" json:"status"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at"`
	ExpiresAt   *time.Time `gorm:"column:expires_at;index" json:"expires_at"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
