package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecliptic-games/matchmaking/internal/mission"
)

// refreshTimeout bounds one background catalog refresh.
const refreshTimeout = 30 * time.Second

// MissionHandler handles the mission catalog refresh trigger.
type MissionHandler struct {
	catalog *mission.Catalog
}

// NewMissionHandler creates a MissionHandler.
func NewMissionHandler(catalog *mission.Catalog) *MissionHandler {
	return &MissionHandler{catalog: catalog}
}

// Update handles POST /update_mission_data. The refresh runs in the
// background; the content pipeline calling this only needs an ack.
func (h *MissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := h.catalog.Refresh(ctx); err != nil {
			log.Error().Err(err).Msg("Mission catalog refresh failed")
		}
	}()
	writeOK(w)
}
