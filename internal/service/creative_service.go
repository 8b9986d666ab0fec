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

// CreativeService serves the public catalog and the creative's own service
// and portfolio management. The public side only ever exposes approved
// profiles; pending and rejected profiles are indistinguishable from absent.
type CreativeService struct {
	creativeRepo  repository.CreativeProfileRepository
	serviceRepo   repository.ServiceRepository
	portfolioRepo repository.PortfolioRepository
	logger        *zap.Logger
}

func NewCreativeService(repos *repository.Repositories, logger *zap.Logger) *CreativeService {
	return &CreativeService{
		creativeRepo:  repos.CreativeProfile,
		serviceRepo:   repos.Service,
		portfolioRepo: repos.Portfolio,
		logger:        logger,
	}
}

func (s *CreativeService) ListApproved(ctx context.Context, category string, limit, offset int) ([]*domain.CreativeProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.creativeRepo.ListApproved(ctx, category, limit, offset)
}

// GetPublic returns an approved profile with its services and portfolio.
func (s *CreativeService) GetPublic(ctx context.Context, profileID uuid.UUID) (*domain.CreativeProfile, error) {
	profile, err := s.creativeRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if profile.ApprovalStatus != domain.ApprovalApproved {
		return nil, domain.ErrNotFound
	}

	if profile.Services, err = s.serviceRepo.ListByCreative(ctx, profile.ID); err != nil {
		return nil, err
	}
	if profile.Portfolio, err = s.portfolioRepo.ListByCreative(ctx, profile.ID); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *CreativeService) UpdateAvailability(ctx context.Context, userID uuid.UUID, availability domain.AvailabilityStatus) (*domain.CreativeProfile, error) {
	if !availability.IsValid() {
		return nil, domain.ErrInvalidTransition
	}

	profile, err := s.ownProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Availability = availability
	profile.UpdatedAt = time.Now()
	if err := s.creativeRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

type ServiceInput struct {
	Title        string
	Description  string
	Price        int64
	DeliveryDays int
	Active       *bool
}

func (s *CreativeService) CreateService(ctx context.Context, userID uuid.UUID, input ServiceInput) (*domain.Service, error) {
	profile, err := s.ownProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Price <= 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	svc := &domain.Service{
		ID:           uuid.New(),
		CreativeID:   profile.ID,
		Title:        input.Title,
		Description:  input.Description,
		Price:        input.Price,
		DeliveryDays: input.DeliveryDays,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Active != nil {
		svc.Active = *input.Active
	}
	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CreativeService) UpdateService(ctx context.Context, userID, serviceID uuid.UUID, input ServiceInput) (*domain.Service, error) {
	profile, err := s.ownProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if svc.CreativeID != profile.ID {
		return nil, domain.ErrForbidden
	}

	if input.Title != "" {
		svc.Title = input.Title
	}
	if input.Description != "" {
		svc.Description = input.Description
	}
	if input.Price > 0 {
		svc.Price = input.Price
	}
	if input.DeliveryDays > 0 {
		svc.DeliveryDays = input.DeliveryDays
	}
	if input.Active != nil {
		svc.Active = *input.Active
	}
	svc.UpdatedAt = time.Now()

	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

type PortfolioInput struct {
	Title       string
	Description string
	ImageURL    string
	ProjectURL  string
}

func (s *CreativeService) AddPortfolioItem(ctx context.Context, userID uuid.UUID, input PortfolioInput) (*domain.PortfolioItem, error) {
	profile, err := s.ownProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := &domain.PortfolioItem{
		ID:          uuid.New(),
		CreativeID:  profile.ID,
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		ProjectURL:  input.ProjectURL,
		CreatedAt:   time.Now(),
	}
	if err := s.portfolioRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CreativeService) ownProfile(ctx context.Context, userID uuid.UUID) (*domain.CreativeProfile, error) {
	profile, err := s.creativeRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	return profile, nil
}
