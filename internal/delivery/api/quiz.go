package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type quizAnswerRequest struct {
	Value string `json:"value"`
}

func (h *Handler) handleQuizQuestions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"questions": h.quiz.Questions()})
}

func (h *Handler) handleQuizAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.quiz.Answers(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, answers)
}

// handleQuizAnswer sets a single-choice answer or toggles a concern
func (h *Handler) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var payload quizAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answers, err := h.quiz.Answer(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "questionID"), payload.Value)
	if err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, answers)
}

func (h *Handler) handleQuizComplete(w http.ResponseWriter, r *http.Request) {
	answers, err := h.quiz.Complete(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, answers)
}
