package postgres

import (
	"context"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type clientProfileRepository struct {
	db *gorm.DB
}

func NewClientProfileRepository(db *gorm.DB) *clientProfileRepository {
	return &clientProfileRepository{db: db}
}

func (r *clientProfileRepository) Create(ctx context.Context, profile *domain.ClientProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *clientProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientProfile, error) {
	var profile domain.ClientProfile
	err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *clientProfileRepository) Update(ctx context.Context, profile *domain.ClientProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

type creativeProfileRepository struct {
	db *gorm.DB
}

func NewCreativeProfileRepository(db *gorm.DB) *creativeProfileRepository {
	return &creativeProfileRepository{db: db}
}

func (r *creativeProfileRepository) Create(ctx context.Context, profile *domain.CreativeProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *creativeProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CreativeProfile, error) {
	var profile domain.CreativeProfile
	err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *creativeProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.CreativeProfile, error) {
	var profile domain.CreativeProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *creativeProfileRepository) Update(ctx context.Context, profile *domain.CreativeProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *creativeProfileRepository) ListApproved(ctx context.Context, category string, limit, offset int) ([]*domain.CreativeProfile, error) {
	q := r.db.WithContext(ctx).
		Where("approval_status = ?", domain.ApprovalApproved)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var profiles []*domain.CreativeProfile
	err := q.Order("rating DESC, created_at DESC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *creativeProfileRepository) ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]*domain.CreativeProfile, error) {
	var profiles []*domain.CreativeProfile
	err := r.db.WithContext(ctx).
		Where("approval_status = ?", status).
		Order("created_at ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
