package handlers

import (
	"net/http"
	"time"

	"github.com/atelierhq/atelier/internal/api/middleware"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingService *service.BookingService
	reviewService  *service.ReviewService
}

func NewBookingHandler(bookingService *service.BookingService, reviewService *service.ReviewService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		reviewService:  reviewService,
	}
}

type CreateBookingRequest struct {
	CreativeID  string `json:"creativeId"`
	ServiceID   string `json:"serviceId"`
	BookingDate string `json:"bookingDate"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	TotalAmount int64  `json:"totalAmount"`
	Notes       string `json:"notes"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	creativeID, err := uuid.Parse(req.CreativeID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid creative id")
		return
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid service id")
		return
	}
	bookingDate, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking date, expected YYYY-MM-DD")
		return
	}

	booking, err := h.bookingService.Create(r.Context(), userID, service.CreateBookingInput{
		CreativeID:  creativeID,
		ServiceID:   serviceID,
		BookingDate: bookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TotalAmount: req.TotalAmount,
		Notes:       req.Notes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookings, err := h.bookingService.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := h.bookingService.Get(r.Context(), userID, bookingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

type TransitionRequest struct {
	Status string `json:"status"`
}

func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	var req TransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := h.bookingService.Transition(r.Context(), userID, bookingID, domain.BookingStatus(req.Status))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *BookingHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	var req CreateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.Create(r.Context(), userID, service.CreateReviewInput{
		BookingID: bookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, review)
}
