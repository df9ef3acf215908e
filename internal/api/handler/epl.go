package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/pitchside/internal/api/respond"
	"github.com/albapepper/pitchside/internal/cache"
	"github.com/albapepper/pitchside/internal/live"
	"github.com/albapepper/pitchside/internal/provider/fpl"
)

// FixturesResponse wraps the fixture list.
type FixturesResponse struct {
	Response []fpl.Fixture `json:"response"`
}

// PlayersResponse wraps an unpaged player list.
type PlayersResponse struct {
	Response []fpl.Player `json:"response"`
}

// GetStandings returns an empty table.
// @Summary EPL standings
// @Description Always an empty list; kept so older clients keep working.
// @Tags epl
// @Produce json
// @Success 200 {array} object
// @Router /api/epl/standings [get]
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, []struct{}{})
}

// GetFixtures returns the season's fixtures, optionally filtered by status.
// @Summary EPL fixtures
// @Tags epl
// @Produce json
// @Param status query string false "Status filter" Enums(upcoming, scheduled, live, inplay, finished, ft)
// @Success 200 {object} FixturesResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/epl/fixtures [get]
func (h *Handler) GetFixtures(w http.ResponseWriter, r *http.Request) {
	fixtures, err := h.fpl.Fixtures(r.Context())
	if err != nil {
		h.upstreamError(w, r, "Failed to fetch fixtures", err)
		return
	}
	filtered := filterFixtures(fixtures, r.URL.Query().Get("status"))
	respond.WriteJSONObject(w, http.StatusOK, FixturesResponse{Response: filtered})
}

// GetPlayers returns one page of players after search and position filters.
// @Summary EPL players
// @Tags epl
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size, 1 to 100 (default 100)"
// @Param search query string false "Name substring"
// @Param position query string false "Position" Enums(GK, DEF, MID, FWD)
// @Success 200 {object} PlayerPage
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/epl/players [get]
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := parsePaging(q)

	players, err := h.fpl.Players(r.Context())
	if err != nil {
		h.upstreamError(w, r, "Failed to fetch players", err)
		return
	}
	filtered := filterPlayers(players, q.Get("search"), q.Get("position"))
	respond.WriteJSONObject(w, http.StatusOK, paginate(filtered, page, limit))
}

// GetInjuries returns players who are not fully available.
// @Summary EPL injuries
// @Tags epl
// @Produce json
// @Success 200 {object} PlayersResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/epl/injuries [get]
func (h *Handler) GetInjuries(w http.ResponseWriter, r *http.Request) {
	players, err := h.fpl.Injuries(r.Context())
	if err != nil {
		h.upstreamError(w, r, "Failed to fetch injuries", err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, PlayersResponse{Response: players})
}

// GetPlayerSummary passes the FPL element summary through untouched.
// @Summary EPL player summary
// @Description Fixtures, match history and past seasons for one player, straight from FPL.
// @Tags epl
// @Produce json
// @Param id path int true "FPL element id"
// @Success 200 {object} map[string]interface{}
// @Success 304 "Not Modified"
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/epl/players/{id}/summary [get]
func (h *Handler) GetPlayerSummary(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Player not found")
		return
	}

	data, err := h.fpl.PlayerSummary(r.Context(), id)
	if err != nil {
		h.upstreamError(w, r, "Failed to fetch player summary", err)
		return
	}

	etag := cache.ComputeETag(data)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, cache.TTLPlayerSummary, false)
}

// GetLiveGames returns the fixtures currently in play.
// @Summary EPL live games
// @Tags epl
// @Produce json
// @Success 200 {array} live.Game
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/epl/live-games [get]
func (h *Handler) GetLiveGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.live.LiveGames(r.Context())
	if err != nil {
		h.upstreamError(w, r, "Failed to fetch live games", err)
		return
	}
	if games == nil {
		games = []live.Game{}
	}
	respond.WriteJSONObject(w, http.StatusOK, games)
}

// SyncData refetches bootstrap and fixtures into the cache.
// @Summary Warm FPL caches
// @Description Open to everyone unless SYNC_REQUIRES_ADMIN=true, which limits it to admins.
// @Tags epl
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/epl/sync [post]
func (h *Handler) SyncData(w http.ResponseWriter, r *http.Request) {
	if err := h.fpl.Warm(r.Context()); err != nil {
		h.logger.Error("sync failed", "error", err)
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "SYNC_FAILED", "Failed to sync data", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Data synced successfully",
	})
}
