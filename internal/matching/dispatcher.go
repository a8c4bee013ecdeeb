package matching

import (
	"context"
	"strconv"
	"time"

	"lifelink-backend/internal/models"
	"lifelink-backend/internal/notify"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dispatcher records intent-to-notify per matched donor. Delivery transport
// is external; this only writes DonorAlert rows and hands the alerted user
// ids to the pusher.
type Dispatcher struct {
	DB     *gorm.DB
	Pusher notify.Pusher
}

// Dispatch upserts one DonorAlert per match. The insert is conflict-tolerant
// on (request_id, donor_id), so concurrent or repeated dispatches for the
// same request never duplicate rows. Each per-donor failure is logged and
// swallowed; one bad donor never aborts the batch. Returns the number of
// alerts newly recorded.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.BloodRequest, matches []DonorMatch) int {
	recorded := 0
	var alerted []uuid.UUID
	now := time.Now()
	for _, m := range matches {
		alert := models.DonorAlert{
			RequestID: req.ID,
			DonorID:   m.DonorID,
			SentAt:    now,
		}
		res := d.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}, {Name: "donor_id"}},
			DoNothing: true,
		}).Create(&alert)
		if res.Error != nil {
			log.Error().Err(res.Error).Uint("request_id", req.ID).Uint("donor_id", m.DonorID).Msg("donor alert upsert failed")
			continue
		}
		if res.RowsAffected > 0 {
			recorded++
			alerted = append(alerted, m.UserID)
		}
	}

	if d.Pusher != nil && len(alerted) > 0 {
		title := "Urgent blood request near you"
		body := req.Title
		go func(ids []uuid.UUID) {
			if err := d.Pusher.Notify(context.Background(), ids, title, body, map[string]string{
				"type":       "donor_alert",
				"request_id": strconv.FormatUint(uint64(req.ID), 10),
			}); err != nil {
				log.Warn().Err(err).Uint("request_id", req.ID).Msg("push dispatch failed")
			}
		}(alerted)
	}
	return recorded
}

// Pipeline wires matcher and dispatcher into the fire-and-forget hook the
// request service calls on the edge into pending.
type Pipeline struct {
	Matcher    *Matcher
	Dispatcher *Dispatcher
}

func (p *Pipeline) FanOut(ctx context.Context, req models.BloodRequest) {
	matches, err := p.Matcher.FindDonors(ctx, req)
	if err != nil {
		log.Error().Err(err).Uint("request_id", req.ID).Msg("donor matching failed")
		return
	}
	n := p.Dispatcher.Dispatch(ctx, req, matches)
	log.Info().Uint("request_id", req.ID).Int("matched", len(matches)).Int("alerted", n).Msg("request fan-out complete")
}
