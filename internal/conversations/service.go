package conversations

import (
	"context"
	"time"

	"lifelink-backend/internal/models"
	"lifelink-backend/internal/pkg/apperr"
	"lifelink-backend/internal/pkg/pagination"
	"lifelink-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	DB *gorm.DB
}

// Open is the get-or-create for the (request, requester, donor) triple. The
// donor initiates; the requester is derived from the request owner. Two
// donors racing on the same triple both land on the same row: the insert is
// conflict-tolerant and the follow-up read returns whichever row won.
func (s *Service) Open(ctx context.Context, requestID uint, donorUserID uuid.UUID) (*ConversationView, error) {
	var req models.BloodRequest
	if err := s.DB.WithContext(ctx).First(&req, requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Request not found")
		}
		return nil, apperr.Internal("Failed to load request", err)
	}
	if req.OwnerID == donorUserID {
		return nil, apperr.BadRequest("Cannot message yourself")
	}

	now := time.Now()
	conv := models.Conversation{
		RequestID:   requestID,
		RequesterID: req.OwnerID,
		DonorID:     donorUserID,
		Status:      models.ConversationActive,
		ClosesAt:    now.Add(models.RequestTTL),
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}, {Name: "requester_id"}, {Name: "donor_id"}},
		DoNothing: true,
	}).Create(&conv).Error
	if err != nil {
		return nil, apperr.Internal("Failed to open conversation", err)
	}

	var existing models.Conversation
	err = s.DB.WithContext(ctx).
		Where("request_id = ? AND requester_id = ? AND donor_id = ?", requestID, req.OwnerID, donorUserID).
		First(&existing).Error
	if err != nil {
		return nil, apperr.Internal("Failed to load conversation", err)
	}
	view, err := s.view(ctx, &existing)
	if err != nil {
		return nil, err
	}
	masked := MaskConversation(*view)
	return &masked, nil
}

// List returns the caller's active conversations, cursor-paginated, masked.
func (s *Service) List(ctx context.Context, userID uuid.UUID, cursor *uint, limit int) (pagination.Page[ConversationView], error) {
	limit = pagination.ClampLimit(limit)
	var convs []models.Conversation
	err := s.DB.WithContext(ctx).
		Where("status = ?", models.ConversationActive).
		Where("requester_id = ? OR donor_id = ?", userID, userID).
		Scopes(pagination.Scope(cursor)).
		Limit(limit + 1).
		Find(&convs).Error
	if err != nil {
		return pagination.Page[ConversationView]{}, apperr.Internal("Failed to list conversations", err)
	}
	page := pagination.Collect(convs, limit, func(c models.Conversation) uint { return c.ID })

	users, err := s.loadParties(ctx, page.Items)
	if err != nil {
		return pagination.Page[ConversationView]{}, err
	}
	views := make([]ConversationView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, MaskConversation(buildView(&page.Items[i], users)))
	}
	return pagination.Page[ConversationView]{
		Items:       views,
		NextCursor:  page.NextCursor,
		HasNextPage: page.HasNextPage,
	}, nil
}

// GetByID loads one conversation with resolved participants. Only a
// participant may view it.
func (s *Service) GetByID(ctx context.Context, id uint, userID uuid.UUID) (*ConversationView, error) {
	conv, err := s.authorize(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	view, err := s.view(ctx, conv)
	if err != nil {
		return nil, err
	}
	masked := MaskConversation(*view)
	return &masked, nil
}

// SendMessage appends a message and updates the conversation's bookkeeping.
// The closed check reads the stored status, not ClosesAt; a conversation past
// its TTL keeps accepting messages until the sweeper closes it (documented
// staleness window of at most one sweep interval).
func (s *Service) SendMessage(ctx context.Context, conversationID uint, senderID uuid.UUID, text string) (*MessageView, error) {
	var conv models.Conversation
	if err := s.DB.WithContext(ctx).First(&conv, conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Conversation not found")
		}
		return nil, apperr.Internal("Failed to load conversation", err)
	}
	if conv.Status == models.ConversationClosed {
		return nil, apperr.BadRequest("Conversation is closed")
	}
	if !conv.Participant(senderID) {
		return nil, apperr.Forbidden("Not a participant")
	}
	if !validation.IsValidMessageText(text) {
		return nil, apperr.BadRequest("Message text must be 1-1000 characters")
	}

	msg := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
	}
	if err := s.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, apperr.Internal("Failed to send message", err)
	}

	// Increment the other party's counter in the store, not in memory, so
	// concurrent senders do not lose updates.
	updates := map[string]interface{}{
		"last_message":    text,
		"last_message_at": msg.CreatedAt,
	}
	if senderID == conv.RequesterID {
		updates["unread_donor"] = gorm.Expr("unread_donor + 1")
	} else {
		updates["unread_requester"] = gorm.Expr("unread_requester + 1")
	}
	if err := s.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(updates).Error; err != nil {
		return nil, apperr.Internal("Failed to update conversation", err)
	}

	// A failed sender load leaves an unresolved ref rather than a resolved
	// zero-value profile, which would also slip past the donor mask.
	senderRef := partyRef(senderID)
	var sender models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", senderID).First(&sender).Error; err == nil {
		senderRef = resolvedParty(&sender)
	}
	view := MessageView{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Sender:         senderRef,
		Text:           msg.Text,
		ReadAt:         msg.ReadAt,
		CreatedAt:      msg.CreatedAt,
	}
	view = MaskMessage(view, conv.DonorID)
	return &view, nil
}

// ListMessages pages through a conversation's messages. Pages are fetched
// newest-first for the cursor math, then reversed to chronological order.
func (s *Service) ListMessages(ctx context.Context, conversationID uint, userID uuid.UUID, cursor *uint, limit int) (pagination.Page[MessageView], error) {
	conv, err := s.authorize(ctx, conversationID, userID)
	if err != nil {
		return pagination.Page[MessageView]{}, err
	}
	limit = pagination.ClampLimit(limit)
	var msgs []models.Message
	err = s.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Scopes(pagination.Scope(cursor)).
		Limit(limit + 1).
		Find(&msgs).Error
	if err != nil {
		return pagination.Page[MessageView]{}, apperr.Internal("Failed to list messages", err)
	}
	page := pagination.Collect(msgs, limit, func(m models.Message) uint { return m.ID })

	senders, err := s.loadUsers(ctx, []uuid.UUID{conv.RequesterID, conv.DonorID})
	if err != nil {
		return pagination.Page[MessageView]{}, err
	}
	views := make([]MessageView, 0, len(page.Items))
	for _, m := range page.Items {
		v := MessageView{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			Sender:         partyRef(m.SenderID),
			Text:           m.Text,
			ReadAt:         m.ReadAt,
			CreatedAt:      m.CreatedAt,
		}
		if u, ok := senders[m.SenderID]; ok {
			v.Sender = resolvedParty(u)
		}
		views = append(views, MaskMessage(v, conv.DonorID))
	}
	pagination.Reverse(views)
	return pagination.Page[MessageView]{
		Items:       views,
		NextCursor:  page.NextCursor,
		HasNextPage: page.HasNextPage,
	}, nil
}

// MarkAsRead zeroes the caller's unread counter and stamps ReadAt on every
// unread message not authored by the caller.
func (s *Service) MarkAsRead(ctx context.Context, conversationID uint, userID uuid.UUID) error {
	conv, err := s.authorize(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	counter := "unread_donor"
	if userID == conv.RequesterID {
		counter = "unread_requester"
	}
	if err := s.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update(counter, 0).Error; err != nil {
		return apperr.Internal("Failed to reset unread counter", err)
	}
	if err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, userID).
		Update("read_at", time.Now()).Error; err != nil {
		return apperr.Internal("Failed to mark messages read", err)
	}
	return nil
}

// UnreadCount sums, over the caller's active conversations, the counter
// matching the caller's role in each.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var asRequester, asDonor int64
	err := s.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("status = ? AND requester_id = ?", models.ConversationActive, userID).
		Select("COALESCE(SUM(unread_requester), 0)").
		Scan(&asRequester).Error
	if err != nil {
		return 0, apperr.Internal("Failed to count unread", err)
	}
	err = s.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("status = ? AND donor_id = ?", models.ConversationActive, userID).
		Select("COALESCE(SUM(unread_donor), 0)").
		Scan(&asDonor).Error
	if err != nil {
		return 0, apperr.Internal("Failed to count unread", err)
	}
	return asRequester + asDonor, nil
}

func (s *Service) authorize(ctx context.Context, id uint, userID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.DB.WithContext(ctx).First(&conv, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Conversation not found")
		}
		return nil, apperr.Internal("Failed to load conversation", err)
	}
	if !conv.Participant(userID) {
		return nil, apperr.Forbidden("Not a participant")
	}
	return &conv, nil
}

func (s *Service) view(ctx context.Context, conv *models.Conversation) (*ConversationView, error) {
	users, err := s.loadUsers(ctx, []uuid.UUID{conv.RequesterID, conv.DonorID})
	if err != nil {
		return nil, err
	}
	v := buildView(conv, users)
	return &v, nil
}

func buildView(conv *models.Conversation, users map[uuid.UUID]*models.User) ConversationView {
	v := ConversationView{
		ID:              conv.ID,
		RequestID:       conv.RequestID,
		Status:          conv.Status,
		Requester:       partyRef(conv.RequesterID),
		Donor:           partyRef(conv.DonorID),
		LastMessage:     conv.LastMessage,
		LastMessageAt:   conv.LastMessageAt,
		UnreadRequester: conv.UnreadRequester,
		UnreadDonor:     conv.UnreadDonor,
		ClosesAt:        conv.ClosesAt,
		CreatedAt:       conv.CreatedAt,
	}
	if u, ok := users[conv.RequesterID]; ok {
		v.Requester = resolvedParty(u)
	}
	if u, ok := users[conv.DonorID]; ok {
		v.Donor = resolvedParty(u)
	}
	return v
}

func (s *Service) loadParties(ctx context.Context, convs []models.Conversation) (map[uuid.UUID]*models.User, error) {
	ids := make([]uuid.UUID, 0, len(convs)*2)
	for _, c := range convs {
		ids = append(ids, c.RequesterID, c.DonorID)
	}
	return s.loadUsers(ctx, ids)
}

func (s *Service) loadUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	out := make(map[uuid.UUID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := s.DB.WithContext(ctx).Where("user_id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperr.Internal("Failed to load users", err)
	}
	for i := range users {
		out[users[i].UserID] = &users[i]
	}
	return out, nil
}
