package handlers

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/api/middleware"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ConversationHandler struct {
	conversationService *service.ConversationService
	creativeService     *service.CreativeService
}

func NewConversationHandler(conversationService *service.ConversationService, creativeService *service.CreativeService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		creativeService:     creativeService,
	}
}

type StartConversationRequest struct {
	CreativeID string `json:"creativeId"`
}

// Start opens (or returns) the thread between the caller and an approved
// creative. The creative is addressed by profile id; the thread itself links
// the two user ids.
func (h *ConversationHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req StartConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profileID, err := uuid.Parse(req.CreativeID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid creative id")
		return
	}

	profile, err := h.creativeService.GetPublic(r.Context(), profileID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if profile.UserID == userID {
		respondError(w, http.StatusForbidden, "cannot start a conversation with yourself")
		return
	}

	conv, err := h.conversationService.StartDirect(r.Context(), userID, profile.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, conv)
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summaries, err := h.conversationService.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	messages, err := h.conversationService.Messages(r.Context(), conversationID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	var req SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.conversationService.SendMessage(r.Context(), conversationID, userID, req.Content, domain.MessageText)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

func (h *ConversationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	if err := h.conversationService.MarkRead(r.Context(), conversationID, userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}
