package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yourusername/dermora-assistant/internal/usecase"
)

// NewRouter wires the HTTP and websocket routes to the use cases.
// metrics is served on /metrics when not nil.
func NewRouter(
	chat usecase.ChatUseCase,
	quiz usecase.QuizUseCase,
	routine usecase.RoutineUseCase,
	leaderboard usecase.LeaderboardUseCase,
	metrics http.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := NewHandler(chat, quiz, routine, leaderboard, logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api", h.RegisterRoutes)

	return r
}
