package postgres

import (
	"context"
	"time"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *conversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *conversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).First(&conv, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByParticipants(ctx context.Context, clientID, creativeID uuid.UUID, bookingID *uuid.UUID) (*domain.Conversation, error) {
	q := r.db.WithContext(ctx).
		Where("client_id = ? AND creative_id = ?", clientID, creativeID)
	if bookingID != nil {
		q = q.Where("booking_id = ?", *bookingID)
	} else {
		q = q.Where("booking_id IS NULL")
	}

	var conv domain.Conversation
	if err := q.First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByPair(ctx context.Context, clientID, creativeID uuid.UUID) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND creative_id = ?", clientID, creativeID).
		Order("last_message_at DESC").
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	var convs []*domain.Conversation
	err := r.db.WithContext(ctx).
		Where("client_id = ? OR creative_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *conversationRepository) SetLastMessageAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}
