package sweeper

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"lifelink-backend/internal/database"
	"lifelink-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSweeperTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedRequest(t *testing.T, db *gorm.DB, status string, expiresAt *time.Time) uint {
	t.Helper()
	req := models.BloodRequest{
		OwnerID:   uuid.New(),
		Title:     "seed",
		BloodType: "O+",
		Status:    status,
		ExpiresAt: expiresAt,
	}
	require.NoError(t, db.Create(&req).Error)
	return req.ID
}

var seedSeq uint32

func seedConversation(t *testing.T, db *gorm.DB, status string, closesAt time.Time) uint {
	t.Helper()
	conv := models.Conversation{
		RequestID:   uint(atomic.AddUint32(&seedSeq, 1)),
		RequesterID: uuid.New(),
		DonorID:     uuid.New(),
		Status:      status,
		ClosesAt:    closesAt,
	}
	require.NoError(t, db.Create(&conv).Error)
	return conv.ID
}

func requestStatus(t *testing.T, db *gorm.DB, id uint) string {
	t.Helper()
	var req models.BloodRequest
	require.NoError(t, db.First(&req, id).Error)
	return req.Status
}

func conversationStatus(t *testing.T, db *gorm.DB, id uint) string {
	t.Helper()
	var conv models.Conversation
	require.NoError(t, db.First(&conv, id).Error)
	return conv.Status
}

func TestSweepOnce_ExpiresPendingRequests(t *testing.T) {
	db := setupSweeperTest(t)
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	stale := seedRequest(t, db, models.RequestPending, &past)
	fresh := seedRequest(t, db, models.RequestPending, &future)
	draft := seedRequest(t, db, models.RequestDraft, nil)
	// A confirmed request past its window stays confirmed: expiry only
	// applies to pending.
	confirmed := seedRequest(t, db, models.RequestConfirmed, &past)

	s := &Sweeper{DB: db}
	expired, _, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	assert.Equal(t, models.RequestExpired, requestStatus(t, db, stale))
	assert.Equal(t, models.RequestPending, requestStatus(t, db, fresh))
	assert.Equal(t, models.RequestDraft, requestStatus(t, db, draft))
	assert.Equal(t, models.RequestConfirmed, requestStatus(t, db, confirmed))
}

func TestSweepOnce_ClosesStaleConversations(t *testing.T) {
	db := setupSweeperTest(t)

	stale := seedConversation(t, db, models.ConversationActive, time.Now().Add(-time.Minute))
	fresh := seedConversation(t, db, models.ConversationActive, time.Now().Add(time.Hour))

	s := &Sweeper{DB: db}
	_, closed, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	assert.Equal(t, models.ConversationClosed, conversationStatus(t, db, stale))
	assert.Equal(t, models.ConversationActive, conversationStatus(t, db, fresh))
}

func TestSweepOnce_Idempotent(t *testing.T) {
	db := setupSweeperTest(t)
	past := time.Now().Add(-time.Minute)
	seedRequest(t, db, models.RequestPending, &past)
	seedConversation(t, db, models.ConversationActive, past)

	s := &Sweeper{DB: db}
	expired, closed, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)
	assert.Equal(t, int64(1), closed)

	expired, closed, err = s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Zero(t, closed)
}

func TestRun_StopsOnCancel(t *testing.T) {
	db := setupSweeperTest(t)
	s := &Sweeper{DB: db, Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
