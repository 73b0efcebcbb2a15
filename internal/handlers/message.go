package handlers

import (
	"encoding/json"
	"net/http"

	"matchwave-backend/internal/middleware"
	"matchwave-backend/internal/pagination"
	"matchwave-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MessageHandler handles direct-messaging HTTP requests
type MessageHandler struct {
	messageService *services.MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// CreateMessageRequest represents a message to send
type CreateMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}

// CreateMessage handles POST /api/v1/users/{user_id}/messages
func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	senderID := middleware.GetUserID(r.Context())
	msg, err := h.messageService.Send(r.Context(), senderID, req.RecipientID, req.Content)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("message_id", msg.ID).
		Str("sender_id", msg.SenderID).
		Str("recipient_id", msg.RecipientID).
		Msg("Message sent")

	respondJSON(w, http.StatusCreated, msg)
}

// GetMessage handles GET /api/v1/users/{user_id}/messages/{id}
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	msg, err := h.messageService.Get(r.Context(), requesterID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, msg)
}

// GetMailbox handles GET /api/v1/users/{user_id}/messages?container=
func (h *MessageHandler) GetMailbox(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	container := r.URL.Query().Get("container")

	msgs, meta, err := h.messageService.Mailbox(r.Context(), userID, container, pagination.FromRequest(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	meta.WriteHeaders(w)
	respondJSON(w, http.StatusOK, msgs)
}

// GetThread handles GET /api/v1/users/{user_id}/messages/thread/{recipient_id}
func (h *MessageHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	otherID := chi.URLParam(r, "recipient_id")

	msgs, err := h.messageService.Thread(r.Context(), viewerID, otherID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, msgs)
}

// MarkRead handles POST /api/v1/users/{user_id}/messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	readerID := middleware.GetUserID(r.Context())
	msg, err := h.messageService.MarkRead(r.Context(), readerID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, msg)
}

// DeleteMessage handles DELETE /api/v1/users/{user_id}/messages/{id}
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.messageService.Delete(r.Context(), requesterID, id); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("message_id", id).
		Str("user_id", requesterID).
		Msg("Message deleted")

	w.WriteHeader(http.StatusNoContent)
}
