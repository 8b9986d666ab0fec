package handlers

import (
	"context"
	"net/http"

	"github.com/atelierhq/atelier/internal/api/middleware"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AdminHandler struct {
	approvalService *service.ApprovalService
}

func NewAdminHandler(approvalService *service.ApprovalService) *AdminHandler {
	return &AdminHandler{approvalService: approvalService}
}

func (h *AdminHandler) ListPendingCreatives(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profiles, err := h.approvalService.ListPending(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

func (h *AdminHandler) ApproveCreative(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.approvalService.Approve)
}

func (h *AdminHandler) RejectCreative(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.approvalService.Reject)
}

func (h *AdminHandler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actorID, profileID uuid.UUID) (*domain.CreativeProfile, error)) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid profile id")
		return
	}

	profile, err := fn(r.Context(), userID, profileID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
