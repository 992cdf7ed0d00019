package api

import (
	"net/http"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
)

// handleLeaderboard ?timeframe=week|month|all, week when absent
func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	tf := entity.TimeFrame(r.URL.Query().Get("timeframe"))
	entries, err := h.leaderboard.List(r.Context(), tf)
	if err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
