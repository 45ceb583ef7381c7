package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promptparty/backend/internal/game"
	"github.com/promptparty/backend/internal/store"
)

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListRooms(t *testing.T) {
	keeper, err := store.NewKeeper(context.Background(), store.NewMemStore(), zap.NewNop())
	require.NoError(t, err)

	state := game.NewState()
	state.Players = []string{"Alice", "Bob"}
	keeper.Put(context.Background(), "R2", state)
	keeper.Put(context.Background(), "R1", game.NewState())

	rec := httptest.NewRecorder()
	ListRooms(keeper)(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []roomSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	assert.Equal(t, []roomSummary{{ID: "R1", Players: 0}, {ID: "R2", Players: 2}}, rooms)
}
