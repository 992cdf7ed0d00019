package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleRoutine(w http.ResponseWriter, r *http.Request) {
	dash, err := h.routine.Dashboard(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dash)
}

func (h *Handler) handleRoutineToggle(w http.ResponseWriter, r *http.Request) {
	dash, err := h.routine.Toggle(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dash)
}
