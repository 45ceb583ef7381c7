package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/promptparty/backend/internal/hub"
	"github.com/promptparty/backend/internal/store"
	"github.com/promptparty/backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, keeper *store.Keeper, handshakeTimeout time.Duration, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/rooms", ListRooms(keeper))
	r.Get("/ws/{roomID}", ws.Handler(h, handshakeTimeout, logger))
	return r
}
