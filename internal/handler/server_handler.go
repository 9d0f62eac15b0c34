package handler

import (
	"net"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ecliptic-games/matchmaking/internal/model"
	"github.com/ecliptic-games/matchmaking/internal/service"
)

// ServerHandler handles the game-host registry endpoints. Hosts are
// identified by their network address, not a body field, so a host cannot
// register on behalf of another.
type ServerHandler struct {
	svc *service.RegistryService
}

// NewServerHandler creates a ServerHandler.
func NewServerHandler(svc *service.RegistryService) *ServerHandler {
	return &ServerHandler{svc: svc}
}

// callerHost extracts the host part of the caller's remote address.
func callerHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Register handles POST /register_or_update_game_server.
func (h *ServerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterServerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	addr := callerHost(r)
	if err := h.svc.Register(r.Context(), addr, req); err != nil {
		log.Error().Err(err).Str("server", addr).Msg("Server registration failed")
		writeError(w, http.StatusInternalServerError, "failed to register server")
		return
	}
	writeOK(w)
}

// Unregister handles POST /unregister_game_server.
func (h *ServerHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	addr := callerHost(r)
	if err := h.svc.Unregister(r.Context(), addr); err != nil {
		log.Error().Err(err).Str("server", addr).Msg("Server unregistration failed")
		writeError(w, http.StatusInternalServerError, "failed to unregister server")
		return
	}
	writeOK(w)
}

// Stats handles POST /register_game_server_stats.
func (h *ServerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var req model.ServerStatsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.svc.RecordStats(r.Context(), callerHost(r), req)
	writeOK(w)
}
