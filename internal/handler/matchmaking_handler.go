package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ecliptic-games/matchmaking/internal/model"
	"github.com/ecliptic-games/matchmaking/internal/repository"
	"github.com/ecliptic-games/matchmaking/internal/service"
)

// MatchmakingHandler handles the player-facing queue endpoints.
type MatchmakingHandler struct {
	svc *service.MatchmakingService
}

// NewMatchmakingHandler creates a MatchmakingHandler.
func NewMatchmakingHandler(svc *service.MatchmakingService) *MatchmakingHandler {
	return &MatchmakingHandler{svc: svc}
}

// Reenter handles POST /reenter_matchmaking_queue. Game clients poll this
// endpoint; infrastructure failures answer 200 with a server_error status so
// the client keeps polling instead of surfacing a hard error.
func (h *MatchmakingHandler) Reenter(w http.ResponseWriter, r *http.Request) {
	var req model.ReenterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.svc.Reenter(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrNotQueued) {
			writeError(w, http.StatusBadRequest, "player is not queued; resend entry fields")
			return
		}
		log.Error().Err(err).Str("playerId", req.PlayerID).Msg("Queue poll failed")
		writeJSON(w, http.StatusOK, model.QueueStatus{Status: model.StatusServerError})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Leave handles POST /leave_matchmaking_queue.
func (h *MatchmakingHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req model.LeaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Leave(r.Context(), req.PlayerID); err != nil {
		log.Error().Err(err).Str("playerId", req.PlayerID).Msg("Leave queue failed")
		writeError(w, http.StatusInternalServerError, "failed to leave queue")
		return
	}
	writeOK(w)
}
