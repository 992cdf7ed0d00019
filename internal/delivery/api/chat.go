package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/usecase"
)

type messageResponse struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	IsFromAssistant bool      `json:"isFromAssistant"`
	Timestamp       time.Time `json:"timestamp"`
}

type sessionResponse struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"createdAt"`
	Messages     []messageResponse `json:"messages"`
	QuickReplies []string          `json:"quickReplies"`
}

type replyResponse struct {
	UserMessage      messageResponse `json:"userMessage"`
	AssistantMessage messageResponse `json:"assistantMessage"`
	Source           string          `json:"source"`
	Outcome          string          `json:"outcome"`
	RevealAfterMs    int64           `json:"revealAfterMs"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func toMessageResponse(m entity.Message) messageResponse {
	return messageResponse{
		ID:              m.ID,
		Text:            m.Text,
		IsFromAssistant: m.IsFromAssistant,
		Timestamp:       m.Timestamp,
	}
}

func toMessageResponses(msgs []entity.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

func toReplyResponse(reply usecase.Reply) replyResponse {
	return replyResponse{
		UserMessage:      toMessageResponse(reply.UserMessage),
		AssistantMessage: toMessageResponse(reply.AssistantMessage),
		Source:           string(reply.Resolution.Source),
		Outcome:          string(reply.Resolution.Outcome),
		RevealAfterMs:    reply.Resolution.RevealDelay.Milliseconds(),
	}
}

// handleCreateSession starts a session and returns it with the greeting
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chat.StartSession(r.Context())
	if err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}

	msgs, err := h.chat.History(r.Context(), session.ID)
	if err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse{
		ID:           session.ID,
		CreatedAt:    session.CreatedAt,
		Messages:     toMessageResponses(msgs),
		QuickReplies: h.chat.QuickReplies(),
	})
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.EndSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chat.History(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": toMessageResponses(msgs)})
}

// handleSendMessage submits one utterance and returns the paired reply
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chat.ProcessMessage(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toReplyResponse(reply))
}
