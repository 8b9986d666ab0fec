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

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// ReviewService accepts one review per completed booking, from the client
// side only, and folds it into the creative's rating aggregates.
type ReviewService struct {
	reviewRepo   repository.ReviewRepository
	bookingRepo  repository.BookingRepository
	creativeRepo repository.CreativeProfileRepository
	logger       *zap.Logger
}

func NewReviewService(repos *repository.Repositories, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		reviewRepo:   repos.Review,
		bookingRepo:  repos.Booking,
		creativeRepo: repos.CreativeProfile,
		logger:       logger,
	}
}

type CreateReviewInput struct {
	BookingID uuid.UUID
	Rating    int
	Comment   string
}

func (s *ReviewService) Create(ctx context.Context, reviewerID uuid.UUID, input CreateReviewInput) (*domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	booking, err := s.bookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if booking.ClientID != reviewerID {
		return nil, domain.ErrForbidden
	}
	if booking.Status != domain.BookingCompleted {
		return nil, domain.ErrInvalidTransition
	}

	if _, err := s.reviewRepo.GetByBookingID(ctx, input.BookingID); err == nil {
		return nil, domain.ErrDuplicateEntity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &domain.Review{
		ID:         uuid.New(),
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		CreativeID: booking.CreativeID,
		Rating:     input.Rating,
		Comment:    input.Comment,
		CreatedAt:  time.Now(),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEntity
		}
		return nil, err
	}

	s.applyAggregates(ctx, booking.CreativeID, input.Rating)

	return review, nil
}

// applyAggregates folds the new rating into the creative's running average.
// The review row is already durable; an aggregate write failure is logged
// rather than unwinding the review.
func (s *ReviewService) applyAggregates(ctx context.Context, creativeID uuid.UUID, rating int) {
	creative, err := s.creativeRepo.GetByID(ctx, creativeID)
	if err != nil {
		s.logger.Error("failed to load creative for rating aggregate",
			zap.String("creative_id", creativeID.String()),
			zap.Error(err))
		return
	}

	total := creative.Rating*float64(creative.ReviewsCount) + float64(rating)
	creative.ReviewsCount++
	creative.Rating = total / float64(creative.ReviewsCount)
	creative.UpdatedAt = time.Now()

	if err := s.creativeRepo.Update(ctx, creative); err != nil {
		s.logger.Error("failed to update rating aggregate",
			zap.String("creative_id", creativeID.String()),
			zap.Error(err))
	}
}

func (s *ReviewService) ListByCreative(ctx context.Context, creativeID uuid.UUID) ([]*domain.Review, error) {
	return s.reviewRepo.ListByCreative(ctx, creativeID)
}
