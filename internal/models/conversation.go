package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation statuses. Transitions are one-way: active -> closed.
const (
	ConversationActive = "active"
	ConversationClosed = "closed"
)

// Conversation is the time-boxed private channel between a request owner and
// one donor. Unique per (request, requester, donor) triple; the unique index
// makes get-or-create race-safe. ClosesAt is fixed at creation and never
// recomputed.
type Conversation struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	RequestID        uint          `gorm:"column:request_id;not null;uniqueIndex:idx_conversation_triple" json:"request_id"`
	Request          *BloodRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	RequesterID      uuid.UUID     `gorm:"column:requester_id;type:uuid;not null;uniqueIndex:idx_conversation_triple;index" json:"requester_id"`
	DonorID          uuid.UUID     `gorm:"column:donor_id;type:uuid;not null;uniqueIndex:idx_conversation_triple;index" json:"donor_id"`
	Status           string        `gorm:"column:status;type:varchar(10);not null;default:active;index" json:"status"`
	LastMessage      *string       `gorm:"column:last_message" json:"last_message"`
	LastMessageAt    *time.Time    `gorm:"column:last_message_at" json:"last_message_at"`
	UnreadRequester  int           `gorm:"column:unread_requester;not null;default:0" json:"unread_requester"`
	UnreadDonor      int           `gorm:"column:unread_donor;not null;default:0" json:"unread_donor"`
	ClosesAt         time.Time     `gorm:"column:closes_at;not null;index" json:"closes_at"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// Participant reports whether userID is the requester or the donor.
func (c *Conversation) Participant(userID uuid.UUID) bool {
	return c.RequesterID == userID || c.DonorID == userID
}
