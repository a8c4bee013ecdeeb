package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength bounds message text (1..MaxMessageLength chars).
const MaxMessageLength = 1000

// Message is append-only: rows are never mutated after creation except for
// ReadAt. Ordering follows the auto-increment id, which tracks creation time.
type Message struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"column:conversation_id;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID  `gorm:"column:sender_id;type:uuid;not null" json:"sender_id"`
	Text           string     `gorm:"column:text;type:varchar(1000);not null" json:"text"`
	ReadAt         *time.Time `gorm:"column:read_at" json:"read_at"`
	CreatedAt      time.Time  `json:"createdAt"`
}
