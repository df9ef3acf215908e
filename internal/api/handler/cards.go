package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/pitchside/internal/api/respond"
	"github.com/albapepper/pitchside/internal/auth"
	"github.com/albapepper/pitchside/internal/cards"
)

// GetUserCards returns the caller's cards with their render parameters.
// @Summary Owned cards
// @Tags cards
// @Produce json
// @Success 200 {array} cards.Card
// @Failure 401 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/user/cards [get]
func (h *Handler) GetUserCards(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	user := auth.UserFrom(r.Context())
	if user == nil {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	owned, err := h.repo.GetUserCards(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to fetch user cards", "user_id", user.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user cards")
		return
	}
	if owned == nil {
		owned = []cards.Card{}
	}
	respond.WriteJSONObject(w, http.StatusOK, cards.WithRenders(owned))
}

// GetPlayer returns one player from the card catalogue.
// @Summary Player details
// @Tags cards
// @Produce json
// @Param id path int true "Player id"
// @Success 200 {object} cards.Player
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/players/{id} [get]
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Player not found")
		return
	}

	player, err := h.repo.GetPlayer(r.Context(), id)
	if err != nil {
		h.logger.Error("error fetching player", "player_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Error fetching player")
		return
	}
	if player == nil {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Player not found")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, player)
}
