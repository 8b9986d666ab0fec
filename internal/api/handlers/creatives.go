package handlers

import (
	"net/http"
	"strconv"

	"github.com/atelierhq/atelier/internal/api/middleware"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CreativeHandler struct {
	creativeService *service.CreativeService
	reviewService   *service.ReviewService
}

func NewCreativeHandler(creativeService *service.CreativeService, reviewService *service.ReviewService) *CreativeHandler {
	return &CreativeHandler{
		creativeService: creativeService,
		reviewService:   reviewService,
	}
}

func (h *CreativeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	profiles, err := h.creativeService.ListApproved(r.Context(), q.Get("category"), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

func (h *CreativeHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid profile id")
		return
	}

	profile, err := h.creativeService.GetPublic(r.Context(), profileID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *CreativeHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	profileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid profile id")
		return
	}

	reviews, err := h.reviewService.ListByCreative(r.Context(), profileID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

type UpdateAvailabilityRequest struct {
	Availability string `json:"availability"`
}

func (h *CreativeHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateAvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.creativeService.UpdateAvailability(r.Context(), userID, domain.AvailabilityStatus(req.Availability))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

type ServiceRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Price        int64  `json:"price"`
	DeliveryDays int    `json:"deliveryDays"`
	Active       *bool  `json:"active"`
}

func (h *CreativeHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	svc, err := h.creativeService.CreateService(r.Context(), userID, service.ServiceInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		DeliveryDays: req.DeliveryDays,
		Active:       req.Active,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, svc)
}

func (h *CreativeHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	serviceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	var req ServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc, err := h.creativeService.UpdateService(r.Context(), userID, serviceID, service.ServiceInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		DeliveryDays: req.DeliveryDays,
		Active:       req.Active,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, svc)
}

type PortfolioRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	ProjectURL  string `json:"projectUrl"`
}

func (h *CreativeHandler) AddPortfolioItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PortfolioRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	item, err := h.creativeService.AddPortfolioItem(r.Context(), userID, service.PortfolioInput{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ProjectURL:  req.ProjectURL,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}
