package service

import (
	"context"
	"errors"
	"time"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidAmount = errors.New("booking amount must be positive")

// BookingService drives the booking lifecycle. Every status change goes
// through the transition table in domain and a guarded conditional update in
// the repository, so concurrent actors cannot double-apply a transition.
type BookingService struct {
	bookingRepo   repository.BookingRepository
	creativeRepo  repository.CreativeProfileRepository
	serviceRepo   repository.ServiceRepository
	conversations *ConversationService
	notifier      *NotificationService
	logger        *zap.Logger
}

func NewBookingService(
	repos *repository.Repositories,
	conversations *ConversationService,
	notifier *NotificationService,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:   repos.Booking,
		creativeRepo:  repos.CreativeProfile,
		serviceRepo:   repos.Service,
		conversations: conversations,
		notifier:      notifier,
		logger:        logger,
	}
}

type CreateBookingInput struct {
	CreativeID  uuid.UUID
	ServiceID   uuid.UUID
	BookingDate time.Time
	StartTime   string
	EndTime     string
	TotalAmount int64
	Notes       string
}

// Create validates the request against the creative's current state and
// inserts the booking as pending. Only approved, available creatives with an
// active service of their own are bookable, and a creative cannot book
// themselves.
func (s *BookingService) Create(ctx context.Context, clientID uuid.UUID, input CreateBookingInput) (*domain.Booking, error) {
	if input.TotalAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	creative, err := s.creativeRepo.GetByID(ctx, input.CreativeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if creative.UserID == clientID {
		return nil, domain.ErrForbidden
	}
	if creative.ApprovalStatus != domain.ApprovalApproved {
		return nil, domain.ErrForbidden
	}
	if creative.Availability != domain.AvailabilityAvailable {
		return nil, domain.ErrForbidden
	}

	svc, err := s.serviceRepo.GetByID(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if svc.CreativeID != creative.ID || !svc.Active {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	booking := &domain.Booking{
		ID:          uuid.New(),
		ClientID:    clientID,
		CreativeID:  creative.ID,
		ServiceID:   svc.ID,
		BookingDate: input.BookingDate,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		TotalAmount: input.TotalAmount,
		Notes:       input.Notes,
		Status:      domain.BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("client_id", clientID.String()),
		zap.String("creative_id", creative.ID.String()))

	return booking, nil
}

// Transition applies a single status change on behalf of actorID. The write
// is conditional on the status the actor saw; a concurrent change surfaces as
// domain.ErrStaleState and the caller must re-read and retry.
func (s *BookingService) Transition(ctx context.Context, actorID, bookingID uuid.UUID, to domain.BookingStatus) (*domain.Booking, error) {
	if !to.IsValid() {
		return nil, domain.ErrInvalidTransition
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	creative, err := s.creativeRepo.GetByID(ctx, booking.CreativeID)
	if err != nil {
		return nil, err
	}

	isClient := actorID == booking.ClientID
	isCreative := actorID == creative.UserID
	if !isClient && !isCreative {
		return nil, domain.ErrForbidden
	}

	if !domain.CanTransition(booking.Status, to) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.authorize(booking.Status, to, isCreative); err != nil {
		return nil, err
	}

	from := booking.Status
	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, from, to); err != nil {
		return nil, err
	}

	booking.Status = to
	booking.UpdatedAt = time.Now()

	s.afterTransition(ctx, booking, creative, from, to, isCreative)

	return booking, nil
}

// authorize enforces which party may request each transition. Acceptance and
// progress moves belong to the creative; cancellation of an accepted booking
// is open to either party, but withdrawing a pending request stays with the
// creative (a client that changes their mind simply lets the request lapse).
func (s *BookingService) authorize(from, to domain.BookingStatus, isCreative bool) error {
	switch to {
	case domain.BookingConfirmed, domain.BookingInProgress, domain.BookingCompleted:
		if !isCreative {
			return domain.ErrForbidden
		}
	case domain.BookingCancelled:
		if from == domain.BookingPending && !isCreative {
			return domain.ErrForbidden
		}
	}
	return nil
}

// afterTransition runs the non-transactional side effects of a committed
// status change. The status write is already durable at this point, so
// failures here are logged and never unwind the transition.
func (s *BookingService) afterTransition(ctx context.Context, booking *domain.Booking, creative *domain.CreativeProfile, from, to domain.BookingStatus, actorIsCreative bool) {
	if to == domain.BookingConfirmed {
		s.ensureConversation(ctx, booking, creative)
	}

	if to == domain.BookingCompleted {
		creative.CompletedProjects++
		creative.UpdatedAt = time.Now()
		if err := s.creativeRepo.Update(ctx, creative); err != nil {
			s.logger.Error("failed to increment completed projects",
				zap.String("creative_id", creative.ID.String()),
				zap.Error(err))
		}
	}

	recipient := booking.ClientID
	if !actorIsCreative {
		recipient = creative.UserID
	}
	s.notifier.Dispatch(ctx, recipient, domain.NotificationBookingStatus, map[string]interface{}{
		"booking_id": booking.ID.String(),
		"from":       string(from),
		"status":     string(to),
	})
}

// ensureConversation opens a messaging thread between the parties when a
// booking is confirmed.
func (s *BookingService) ensureConversation(ctx context.Context, booking *domain.Booking, creative *domain.CreativeProfile) {
	if _, err := s.conversations.EnsureForBooking(ctx, booking.ClientID, creative.UserID, booking.ID); err != nil {
		s.logger.Error("failed to open conversation for booking",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err))
	}
}

// Get returns the booking to one of its parties.
func (s *BookingService) Get(ctx context.Context, requesterID, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if booking.ClientID == requesterID {
		return booking, nil
	}
	creative, err := s.creativeRepo.GetByID(ctx, booking.CreativeID)
	if err == nil && creative.UserID == requesterID {
		return booking, nil
	}
	return nil, domain.ErrForbidden
}

// ListForUser returns the user's bookings from whichever side of the
// marketplace they are on. A user with a creative profile sees the bookings
// placed with them; everyone else sees the bookings they placed.
func (s *BookingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Booking, error) {
	creative, err := s.creativeRepo.GetByUserID(ctx, userID)
	if err == nil {
		return s.bookingRepo.ListByCreative(ctx, creative.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.bookingRepo.ListByClient(ctx, userID)
}
