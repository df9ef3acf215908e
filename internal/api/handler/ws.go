package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/albapepper/pitchside/internal/api/respond"
	"github.com/albapepper/pitchside/internal/live"
)

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Non-browser clients send no Origin.
			return origin == "" || h.origins[origin]
		},
	}
}

// LiveGamesWS upgrades to a WebSocket that receives a live_games frame on
// connect and after every successful poll.
// @Summary Live games push feed
// @Description WebSocket. Each frame is {"type":"live_games","games":[...],"timestamp":...}.
// @Tags epl
// @Success 101 "Switching Protocols"
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/epl/live-games/ws [get]
func (h *Handler) LiveGamesWS(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "FEED_DISABLED", "Live feed disabled")
		return
	}

	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := live.NewClient(uuid.NewString(), conn, h.feed)
	h.feed.Register(c)

	// Pumps run on the server context, not the request's.
	go c.WritePump(h.baseCtx)
	go c.ReadPump(h.baseCtx)
}
