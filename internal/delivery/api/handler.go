package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/dermora-assistant/internal/usecase"
)

// Handler HTTP surface of the assistant
type Handler struct {
	chat        usecase.ChatUseCase
	quiz        usecase.QuizUseCase
	routine     usecase.RoutineUseCase
	leaderboard usecase.LeaderboardUseCase
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

// NewHandler creates the handler
func NewHandler(
	chat usecase.ChatUseCase,
	quiz usecase.QuizUseCase,
	routine usecase.RoutineUseCase,
	leaderboard usecase.LeaderboardUseCase,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chat:        chat,
		quiz:        quiz,
		routine:     routine,
		leaderboard: leaderboard,
		logger:      logger.Named("api"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts every route on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Delete("/", h.handleEndSession)

		r.Get("/messages", h.handleHistory)
		r.Post("/messages", h.handleSendMessage)
		r.Get("/ws", h.handleWebSocket)

		r.Get("/quiz", h.handleQuizAnswers)
		r.Put("/quiz/{questionID}", h.handleQuizAnswer)
		r.Post("/quiz/complete", h.handleQuizComplete)

		r.Get("/routine", h.handleRoutine)
		r.Post("/routine/{itemID}/toggle", h.handleRoutineToggle)
	})

	r.Get("/quiz/questions", h.handleQuizQuestions)
	r.Get("/leaderboard", h.handleLeaderboard)
}

// respondJSON writes payload as JSON
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes {"error": message}
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondUseCaseError maps use case errors to status codes. Unknown errors
// are logged and hidden behind a generic 500.
func (h *Handler) respondUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrEmptyMessage),
		errors.Is(err, usecase.ErrInvalidOption),
		errors.Is(err, usecase.ErrUnknownTimeFrame):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, usecase.ErrUnknownQuestion),
		errors.Is(err, usecase.ErrUnknownRoutineItem):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrQuizIncomplete):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
