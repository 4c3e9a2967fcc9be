package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/psychai/companion/internal/model/chat"
	"github.com/psychai/companion/internal/model/clinical"
	"github.com/psychai/companion/internal/service/companion"
	"github.com/psychai/companion/internal/service/escalation"
	"github.com/psychai/companion/pkg/utils"
)

// Handler is the JSON variant of the patient chat surface.
type Handler struct {
	companion *companion.Service
}

// New creates the chat handler.
func New(companionSvc *companion.Service) *Handler {
	return &Handler{companion: companionSvc}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleNewSession)
	r.Post("/messages", h.handlePostMessage)
	r.Get("/messages", h.handleTranscript)
}

type turnResponse struct {
	Patient      chat.Message      `json:"patient"`
	Assistant    chat.Message      `json:"assistant"`
	Record       clinical.Record   `json:"record"`
	Escalation   escalation.Status `json:"escalation"`
	UsedFallback bool              `json:"usedFallback"`
}

func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := h.companion.HandlePatientMessage(r.Context(), payload.Content)
	if err != nil {
		if errors.Is(err, companion.ErrEmptyMessage) {
			utils.RespondError(w, http.StatusBadRequest, "content is required")
			return
		}
		log.Printf("[chat] failed to handle message: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to handle message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, turnResponse{
		Patient:      turn.Patient,
		Assistant:    turn.Assistant,
		Record:       turn.Record,
		Escalation:   turn.Escalation.Status,
		UsedFallback: turn.Reply.UsedFallback(),
	})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	snapshot := h.companion.Snapshot(r.Context())
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"messages":  snapshot.Messages,
		"summaries": snapshot.RecentSummaries,
	})
}

// handleNewSession archives the conversation. 204 means it was already empty.
func (h *Handler) handleNewSession(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.companion.StartNewSession(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, summary)
}
