package sweeper

import (
	"context"
	"time"

	"lifelink-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Sweeper periodically expires stale pending requests and closes stale
// active conversations. It is owned by the process (started from main, no
// global singleton) and shares the same *gorm.DB as the synchronous
// services.
type Sweeper struct {
	DB       *gorm.DB
	Interval time.Duration
}

// Run blocks, sweeping every Interval until ctx is cancelled. One sweep runs
// immediately on start.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	s.sweep(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	expired, closed, err := s.SweepOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep failed")
		return
	}
	if expired > 0 || closed > 0 {
		log.Info().Int64("requests_expired", expired).Int64("conversations_closed", closed).Msg("sweep complete")
	}
}

// SweepOnce runs both bulk transitions and returns the affected row counts.
// Each is a single conditional UPDATE: the status predicate means a request
// confirmed at the same instant is simply not matched, so there is no lost
// update to a concurrent user-driven transition. Re-running when nothing
// matches is a no-op.
func (s *Sweeper) SweepOnce(ctx context.Context) (requestsExpired, conversationsClosed int64, err error) {
	now := time.Now()

	res := s.DB.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.RequestPending, now).
		Update("status", models.RequestExpired)
	if res.Error != nil {
		return 0, 0, res.Error
	}
	requestsExpired = res.RowsAffected

	res = s.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("status = ? AND closes_at <= ?", models.ConversationActive, now).
		Update("status", models.ConversationClosed)
	if res.Error != nil {
		return requestsExpired, 0, res.Error
	}
	conversationsClosed = res.RowsAffected
	return requestsExpired, conversationsClosed, nil
}
