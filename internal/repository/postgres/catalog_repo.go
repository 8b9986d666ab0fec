package postgres

import (
	"context"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type serviceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *serviceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, svc *domain.Service) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *serviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	var svc domain.Service
	err := r.db.WithContext(ctx).First(&svc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *serviceRepository) Update(ctx context.Context, svc *domain.Service) error {
	return r.db.WithContext(ctx).Save(svc).Error
}

func (r *serviceRepository) ListByCreative(ctx context.Context, creativeID uuid.UUID) ([]*domain.Service, error) {
	var services []*domain.Service
	err := r.db.WithContext(ctx).
		Where("creative_id = ?", creativeID).
		Order("created_at ASC").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

type portfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) *portfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) Create(ctx context.Context, item *domain.PortfolioItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *portfolioRepository) ListByCreative(ctx context.Context, creativeID uuid.UUID) ([]*domain.PortfolioItem, error) {
	var items []*domain.PortfolioItem
	err := r.db.WithContext(ctx).
		Where("creative_id = ?", creativeID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
