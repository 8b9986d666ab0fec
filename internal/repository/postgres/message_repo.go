package postgres

import (
	"context"
	"time"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *messageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", at).Error
}

func (r *messageRepository) CountUnread(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND read_at IS NULL", conversationID, readerID).
		Count(&count).Error
	return count, err
}
