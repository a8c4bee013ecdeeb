package models

import "time"

// DonorAlert records the intent to notify a donor about a matched request.
// The composite unique index is the idempotency guarantee: concurrent
// dispatches for the same request insert with ON CONFLICT DO NOTHING, so
// exactly one row per (request, donor) pair ever exists.
type DonorAlert struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	RequestID uint          `gorm:"column:request_id;not null;uniqueIndex:idx_alert_request_donor" json:"request_id"`
	Request   *BloodRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	DonorID   uint          `gorm:"column:donor_id;not null;uniqueIndex:idx_alert_request_donor" json:"donor_id"`
	Donor     *Donor        `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	Delivered bool          `gorm:"column:delivered;default:false" json:"delivered"`
	SentAt    time.Time     `gorm:"column:sent_at;not null" json:"sent_at"`
	ReadAt    *time.Time    `gorm:"column:read_at" json:"read_at"`
}
