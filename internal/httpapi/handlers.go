package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/promptparty/backend/internal/store"
)

type roomSummary struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
}

// ListRooms reports every persisted room and its roster size. Rooms outlive
// their connections, so this includes rooms nobody is currently attached to.
func ListRooms(keeper *store.Keeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sizes := keeper.RosterSizes()

		rooms := make([]roomSummary, 0, len(sizes))
		for id, players := range sizes {
			rooms = append(rooms, roomSummary{ID: id, Players: players})
		}
		sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rooms)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
