package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/core/relay"
	"github.com/krau/RelayAny-Bot/pkg/queue"
)

type CreateRelayRequest struct {
	Link   string `json:"link"`
	UserID int64  `json:"user_id"`
	// ChatID receives notices and is the default target. It defaults to
	// the user's private chat with the bot.
	ChatID int64 `json:"chat_id,omitempty"`
	// Count relays that many consecutive messages starting at Link.
	Count int `json:"count,omitempty"`
}

type CreateRelayResponse struct {
	TaskIDs []string `json:"task_ids"`
}

type QueueStatusResponse struct {
	Pending int `json:"pending"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	ctx      context.Context
	relays   Relays
	allowed  func(userID int64) bool
	batchMax int
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleCreateRelay(w http.ResponseWriter, r *http.Request) {
	var req CreateRelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID <= 0 {
		respondError(w, "user_id is required and must be positive", http.StatusBadRequest)
		return
	}
	if h.allowed != nil && !h.allowed(req.UserID) {
		respondError(w, "user is not allowed", http.StatusForbidden)
		return
	}
	link, err := tgutil.ParseMessageLink(req.Link)
	if err != nil {
		respondError(w, "invalid link", http.StatusBadRequest)
		return
	}
	count := max(req.Count, 1)
	if h.batchMax > 0 && count > h.batchMax {
		respondError(w, "count exceeds the batch limit", http.StatusBadRequest)
		return
	}
	if link.IsStory() && count > 1 {
		respondError(w, "stories cannot be relayed in batches", http.StatusBadRequest)
		return
	}
	chatID := req.ChatID
	if chatID == 0 {
		chatID = req.UserID
	}

	logger := log.FromContext(r.Context()).WithPrefix("api")
	ids := make([]string, 0, count)
	for i := range count {
		id, err := h.relays.Enqueue(h.ctx, relay.Request{
			UserID: req.UserID,
			ChatID: chatID,
			Link:   link,
			Offset: i,
		})
		if err != nil {
			logger.Errorf("Failed to enqueue relay: %v", err)
			respondError(w, "failed to add relay to queue", http.StatusInternalServerError)
			return
		}
		ids = append(ids, id)
	}
	respondJSON(w, http.StatusAccepted, CreateRelayResponse{TaskIDs: ids})
}

func (h *handler) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, QueueStatusResponse{Pending: h.relays.Pending()})
}

func (h *handler) handleCancelRelay(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, "task id is required", http.StatusBadRequest)
		return
	}
	if err := h.relays.Cancel(id); err != nil {
		if errors.Is(err, queue.ErrTaskNotFound) {
			respondError(w, "task not found", http.StatusNotFound)
			return
		}
		respondError(w, "failed to cancel task", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
