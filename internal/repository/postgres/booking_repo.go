package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *bookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus writes the status column only if the stored value still
// equals from, so concurrent transitions on the same booking are serialized
// by the row update itself. RowsAffected == 0 means the precondition no
// longer holds: either the row is gone or someone else moved it first.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&domain.Booking{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrStaleState
	}
	return nil
}

func (r *bookingRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Booking, error) {
	return r.list(ctx, "client_id = ?", clientID)
}

func (r *bookingRepository) ListByCreative(ctx context.Context, creativeID uuid.UUID) ([]*domain.Booking, error) {
	return r.list(ctx, "creative_id = ?", creativeID)
}

func (r *bookingRepository) list(ctx context.Context, cond string, arg uuid.UUID) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return bookings, nil
}
