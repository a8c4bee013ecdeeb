package conversations

import (
	"time"

	"lifelink-backend/internal/models"

	"github.com/google/uuid"
)

// donorDisplayLabel replaces a donor's identity wherever a donor-position
// value is rendered.
const donorDisplayLabel = "Donor"

// Party is a resolved participant profile as rendered to clients.
type Party struct {
	UserID   uuid.UUID `json:"user_id"`
	Fullname string    `json:"fullname"`
	Phone    string    `json:"phone,omitempty"`
	Email    string    `json:"email,omitempty"`
}

// PartyRef tags whether a related participant is a bare id or a loaded
// profile, so callers can never mistake an unresolved reference for data.
type PartyRef struct {
	ID       uuid.UUID `json:"id"`
	Resolved bool      `json:"resolved"`
	Profile  *Party    `json:"profile,omitempty"`
}

func partyRef(id uuid.UUID) PartyRef {
	return PartyRef{ID: id}
}

func resolvedParty(u *models.User) PartyRef {
	if u == nil {
		return PartyRef{}
	}
	return PartyRef{
		ID:       u.UserID,
		Resolved: true,
		Profile: &Party{
			UserID:   u.UserID,
			Fullname: u.Fullname,
			Phone:    u.Phone,
			Email:    u.Email,
		},
	}
}

// ConversationView is the client-facing projection of a conversation.
type ConversationView struct {
	ID              uint       `json:"id"`
	RequestID       uint       `json:"request_id"`
	Status          string     `json:"status"`
	Requester       PartyRef   `json:"requester"`
	Donor           PartyRef   `json:"donor"`
	LastMessage     *string    `json:"last_message"`
	LastMessageAt   *time.Time `json:"last_message_at"`
	UnreadRequester int        `json:"unread_requester"`
	UnreadDonor     int        `json:"unread_donor"`
	ClosesAt        time.Time  `json:"closes_at"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// MessageView is the client-facing projection of a message.
type MessageView struct {
	ID             uint       `json:"id"`
	ConversationID uint       `json:"conversation_id"`
	Sender         PartyRef   `json:"sender"`
	Text           string     `json:"text"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// maskParty strips contact fields and replaces the display name with the
// generic label. Pure; the input is not modified.
func maskParty(ref PartyRef) PartyRef {
	if !ref.Resolved || ref.Profile == nil {
		return ref
	}
	return PartyRef{
		ID:       ref.ID,
		Resolved: true,
		Profile: &Party{
			UserID:   ref.Profile.UserID,
			Fullname: donorDisplayLabel,
		},
	}
}

// MaskConversation applies the identity-masking projection at a read
// boundary. The donor position is masked unconditionally, even when the
// viewer is the donor themself; every list/get/send path goes through this
// one function so the behavior cannot drift between paths.
func MaskConversation(v ConversationView) ConversationView {
	v.Donor = maskParty(v.Donor)
	return v
}

// MaskMessage masks the sender when the sender sits in the donor position of
// its conversation.
func MaskMessage(v MessageView, donorUserID uuid.UUID) MessageView {
	if v.Sender.ID == donorUserID {
		v.Sender = maskParty(v.Sender)
	}
	return v
}
