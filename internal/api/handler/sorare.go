package handler

import (
	"net/http"
	"strings"

	"github.com/albapepper/pitchside/internal/api/respond"
)

// GetSorarePlayer looks a player up on Sorare by name.
// @Summary Sorare player lookup
// @Description Returns the Sorare profile for firstName-lastName, or null when Sorare has no such player.
// @Tags sorare
// @Produce json
// @Param firstName query string true "First name"
// @Param lastName query string true "Last name"
// @Success 200 {object} sorare.Player
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/sorare/player [get]
func (h *Handler) GetSorarePlayer(w http.ResponseWriter, r *http.Request) {
	first := strings.TrimSpace(r.URL.Query().Get("firstName"))
	last := strings.TrimSpace(r.URL.Query().Get("lastName"))
	if first == "" || last == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_NAME", "firstName and lastName required")
		return
	}

	player, err := h.sorare.FindPlayer(r.Context(), first, last)
	if err != nil {
		h.upstreamError(w, r, "Failed to fetch Sorare player", err)
		return
	}
	// A nil player encodes as null.
	respond.WriteJSONObject(w, http.StatusOK, player)
}
