package requests

import (
	"context"
	"testing"
	"time"

	"lifelink-backend/internal/database"
	"lifelink-backend/internal/models"
	"lifelink-backend/internal/pkg/apperr"
	"lifelink-backend/internal/pkg/pagination"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubPipeline struct {
	calls chan uint
}

func (s *stubPipeline) FanOut(ctx context.Context, req models.BloodRequest) {
	s.calls <- req.ID
}

func setupRequestsTest(t *testing.T) (*Service, *stubPipeline, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	pipe := &stubPipeline{calls: make(chan uint, 8)}
	return &Service{DB: db, Alerts: pipe}, pipe, db
}

func waitForFanOut(t *testing.T, pipe *stubPipeline) uint {
	t.Helper()
	select {
	case id := <-pipe.calls:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("fan-out was not invoked")
		return 0
	}
}

func ptr(f float64) *float64 { return &f }

func draftInput() CreateRequestInput {
	return CreateRequestInput{
		Title:     "O+ needed at Al-Mouwasat",
		BloodType: "O+",
		Urgency:   models.UrgencyCritical,
		Latitude:  ptr(33.5),
		Longitude: ptr(36.3),
		City:      "Damascus",
	}
}

func TestCreateRequest_Validation(t *testing.T) {
	svc, _, _ := setupRequestsTest(t)
	owner := uuid.New()

	_, err := svc.CreateRequest(context.Background(), owner, CreateRequestInput{Title: "x", BloodType: "Z+"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeBadRequest, apperr.From(err).Code)

	_, err = svc.CreateRequest(context.Background(), owner, CreateRequestInput{BloodType: "O+"})
	require.Error(t, err)

	req, err := svc.CreateRequest(context.Background(), owner, draftInput())
	require.NoError(t, err)
	assert.Equal(t, models.RequestDraft, req.Status)
	assert.Nil(t, req.PublishedAt)
	assert.Nil(t, req.ExpiresAt)
}

func TestPublishRequest_StampsWindowOnce(t *testing.T) {
	svc, pipe, _ := setupRequestsTest(t)
	owner := uuid.New()
	req, err := svc.CreateRequest(context.Background(), owner, draftInput())
	require.NoError(t, err)

	published, err := svc.PublishRequest(context.Background(), req.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, published.Status)
	require.NotNil(t, published.PublishedAt)
	require.NotNil(t, published.ExpiresAt)
	assert.Equal(t, published.PublishedAt.Add(models.RequestTTL), *published.ExpiresAt)

	assert.Equal(t, req.ID, waitForFanOut(t, pipe))

	// Already pending: publishing again is an invalid edge and must not
	// re-trigger fan-out or touch the timestamps.
	_, err = svc.PublishRequest(context.Background(), req.ID, owner)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeBadRequest, apperr.From(err).Code)

	reloaded, err := svc.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, published.PublishedAt.Unix(), reloaded.PublishedAt.Unix())
	assert.Equal(t, published.ExpiresAt.Unix(), reloaded.ExpiresAt.Unix())

	select {
	case <-pipe.calls:
		t.Fatal("fan-out must fire only on the edge into pending")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishRequest_OwnerOnly(t *testing.T) {
	svc, _, _ := setupRequestsTest(t)
	owner := uuid.New()
	req, err := svc.CreateRequest(context.Background(), owner, draftInput())
	require.NoError(t, err)

	_, err = svc.PublishRequest(context.Background(), req.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbidden, apperr.From(err).Code)
}

func TestTransitionRequest_Graph(t *testing.T) {
	svc, pipe, _ := setupRequestsTest(t)
	owner := uuid.New()
	req, err := svc.CreateRequest(context.Background(), owner, draftInput())
	require.NoError(t, err)

	// draft -> completed is illegal
	_, err = svc.TransitionRequest(context.Background(), req.ID, owner, models.RequestCompleted)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeBadRequest, apperr.From(err).Code)

	// expired is sweeper-only
	_, err = svc.TransitionRequest(context.Background(), req.ID, owner, models.RequestExpired)
	require.Error(t, err)

	_, err = svc.PublishRequest(context.Background(), req.ID, owner)
	require.NoError(t, err)
	waitForFanOut(t, pipe)

	confirmed, err := svc.TransitionRequest(context.Background(), req.ID, owner, models.RequestConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.RequestConfirmed, confirmed.Status)

	completed, err := svc.TransitionRequest(context.Background(), req.ID, owner, models.RequestCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, completed.Status)

	// terminal
	_, err = svc.TransitionRequest(context.Background(), req.ID, owner, models.RequestCancelled)
	require.Error(t, err)
}

func TestUpdateRequest_DraftOnly(t *testing.T) {
	svc, pipe, _ := setupRequestsTest(t)
	owner := uuid.New()
	req, err := svc.CreateRequest(context.Background(), owner, draftInput())
	require.NoError(t, err)

	in := draftInput()
	in.Title = "Updated title"
	updated, err := svc.UpdateRequest(context.Background(), req.ID, owner, in)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", updated.Title)

	_, err = svc.UpdateRequest(context.Background(), req.ID, uuid.New(), in)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbidden, apperr.From(err).Code)

	_, err = svc.PublishRequest(context.Background(), req.ID, owner)
	require.NoError(t, err)
	waitForFanOut(t, pipe)

	_, err = svc.UpdateRequest(context.Background(), req.ID, owner, in)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeBadRequest, apperr.From(err).Code)
}

func TestListMine_FullWalk(t *testing.T) {
	svc, _, _ := setupRequestsTest(t)
	owner := uuid.New()
	for i := 0; i < 7; i++ {
		_, err := svc.CreateRequest(context.Background(), owner, draftInput())
		require.NoError(t, err)
	}
	// Another owner's request must not leak in.
	_, err := svc.CreateRequest(context.Background(), uuid.New(), draftInput())
	require.NoError(t, err)

	seen := map[uint]int{}
	var cursor *uint
	pages := 0
	for {
		page, err := svc.ListMine(context.Background(), owner, cursor, 3)
		require.NoError(t, err)
		for _, r := range page.Items {
			seen[r.ID]++
			assert.Equal(t, owner, r.OwnerID)
		}
		pages++
		if page.NextCursor == nil {
			break
		}
		cursor = pagination.ParseCursor(*page.NextCursor)
	}
	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 7)
	for id, n := range seen {
		assert.Equal(t, 1, n, "request %d", id)
	}
}
