package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lifelink-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Pusher delivers push notifications. Callers never await delivery and never
// treat a push failure as their own failure.
type Pusher interface {
	Notify(ctx context.Context, userIDs []uuid.UUID, title, body string, data map[string]string) error
}

// Nop discards notifications (tests, push disabled).
type Nop struct{}

func (Nop) Notify(context.Context, []uuid.UUID, string, string, map[string]string) error {
	return nil
}

// HTTPPusher posts Expo-style push messages to a gateway, resolving each
// user's registered device tokens from the store.
type HTTPPusher struct {
	DB     *gorm.DB
	URL    string
	Client *http.Client
}

type pushMessage struct {
	To    []string          `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

func (p *HTTPPusher) Notify(ctx context.Context, userIDs []uuid.UUID, title, body string, data map[string]string) error {
	if p.URL == "" || len(userIDs) == 0 {
		return nil
	}
	if p.Client == nil {
		p.Client = &http.Client{Timeout: 10 * time.Second}
	}

	var users []models.User
	if err := p.DB.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&users).Error; err != nil {
		return fmt.Errorf("push: load users: %w", err)
	}
	var tokens []string
	for _, u := range users {
		if len(u.PushTokens) == 0 {
			continue
		}
		var ts []string
		if err := json.Unmarshal(u.PushTokens, &ts); err != nil {
			log.Warn().Str("user_id", u.UserID.String()).Err(err).Msg("push: bad token payload")
			continue
		}
		tokens = append(tokens, ts...)
	}
	if len(tokens) == 0 {
		return nil
	}

	payload, err := json.Marshal(pushMessage{To: tokens, Title: title, Body: body, Data: data})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway status %d", resp.StatusCode)
	}
	return nil
}
