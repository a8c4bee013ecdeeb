package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lifelink-backend/internal/database"
	"lifelink-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupNotifyTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedUserWithTokens(t *testing.T, db *gorm.DB, tokens ...string) uuid.UUID {
	t.Helper()
	user := models.User{Fullname: "Sami Khoury", Email: uuid.New().String() + "@example.com", PasswordHash: "x"}
	if len(tokens) > 0 {
		raw, err := json.Marshal(tokens)
		require.NoError(t, err)
		user.PushTokens = datatypes.JSON(raw)
	}
	require.NoError(t, db.Create(&user).Error)
	return user.UserID
}

func TestHTTPPusher_PostsRegisteredTokens(t *testing.T) {
	db := setupNotifyTest(t)
	withTokens := seedUserWithTokens(t, db, "ExponentPushToken[aaa]", "ExponentPushToken[bbb]")
	noTokens := seedUserWithTokens(t, db)

	var got pushMessage
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	p := &HTTPPusher{DB: db, URL: gateway.URL}
	err := p.Notify(context.Background(), []uuid.UUID{withTokens, noTokens},
		"Urgent blood request near you", "O+ needed", map[string]string{"request_id": "7"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"ExponentPushToken[aaa]", "ExponentPushToken[bbb]"}, got.To)
	assert.Equal(t, "Urgent blood request near you", got.Title)
	assert.Equal(t, "O+ needed", got.Body)
	assert.Equal(t, "7", got.Data["request_id"])
}

func TestHTTPPusher_SkipsWhenNoTokens(t *testing.T) {
	db := setupNotifyTest(t)
	noTokens := seedUserWithTokens(t, db)

	called := false
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer gateway.Close()

	p := &HTTPPusher{DB: db, URL: gateway.URL}
	require.NoError(t, p.Notify(context.Background(), []uuid.UUID{noTokens}, "t", "b", nil))
	assert.False(t, called, "gateway must not be hit without tokens")
}

func TestHTTPPusher_GatewayError(t *testing.T) {
	db := setupNotifyTest(t)
	withTokens := seedUserWithTokens(t, db, "ExponentPushToken[aaa]")

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer gateway.Close()

	p := &HTTPPusher{DB: db, URL: gateway.URL}
	err := p.Notify(context.Background(), []uuid.UUID{withTokens}, "t", "b", nil)
	assert.Error(t, err)
}
