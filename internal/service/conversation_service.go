package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrEmptyMessage = errors.New("message content is required")

// ConversationService coordinates messaging threads: it guarantees at most
// one conversation per (client, creative, booking) triple and keeps
// last_message_at strictly tracking the newest message.
type ConversationService struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	notifier *NotificationService
	logger   *zap.Logger
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	notifier *NotificationService,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// EnsureConversation returns the existing conversation for the triple, or
// creates one if none exists. The existing row is returned unchanged.
func (s *ConversationService) EnsureConversation(ctx context.Context, clientID, creativeID uuid.UUID, bookingID *uuid.UUID) (*domain.Conversation, error) {
	existing, err := s.convRepo.FindByParticipants(ctx, clientID, creativeID, bookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	conv := &domain.Conversation{
		ID:            uuid.New(),
		BookingID:     bookingID,
		ClientID:      clientID,
		CreativeID:    creativeID,
		Status:        domain.ConversationActive,
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.convRepo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// EnsureForBooking reuses any existing thread between the pair, whichever
// booking it was opened for; only a brand-new pair gets a conversation
// linked to this booking.
func (s *ConversationService) EnsureForBooking(ctx context.Context, clientID, creativeID, bookingID uuid.UUID) (*domain.Conversation, error) {
	existing, err := s.convRepo.FindByPair(ctx, clientID, creativeID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.EnsureConversation(ctx, clientID, creativeID, &bookingID)
}

// StartDirect opens a thread between the pair outside any booking, reusing an
// existing one regardless of booking linkage.
func (s *ConversationService) StartDirect(ctx context.Context, clientID, creativeID uuid.UUID) (*domain.Conversation, error) {
	existing, err := s.convRepo.FindByPair(ctx, clientID, creativeID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.EnsureConversation(ctx, clientID, creativeID, nil)
}

// SendMessage inserts the message and bumps the parent conversation's
// last_message_at to the message's own creation time. Using the message
// timestamp rather than a later wall-clock read keeps ordering immune to
// clock skew between the two writes.
func (s *ConversationService) SendMessage(ctx context.Context, conversationID, senderID uuid.UUID, content string, msgType domain.MessageType) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	if msgType == "" {
		msgType = domain.MessageText
	}

	conv, err := s.access(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    msgType,
		CreatedAt:      time.Now(),
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.convRepo.SetLastMessageAt(ctx, conversationID, msg.CreatedAt); err != nil {
		// The message exists; ordering metadata lagging behind is
		// recoverable on the next send, so log and carry on.
		s.logger.Warn("failed to bump conversation last_message_at",
			zap.String("conversation_id", conversationID.String()),
			zap.Error(err))
	}

	s.notifier.Dispatch(ctx, conv.Other(senderID), domain.NotificationNewMessage, map[string]interface{}{
		"conversation_id": conversationID.String(),
		"message_id":      msg.ID.String(),
		"sender_id":       senderID.String(),
	})

	return msg, nil
}

// MarkRead stamps ReadAt on every unread message not sent by readerID.
// Re-invoking after everything is read is a no-op, not an error.
func (s *ConversationService) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	if _, err := s.access(ctx, conversationID, readerID); err != nil {
		return err
	}
	return s.msgRepo.MarkRead(ctx, conversationID, readerID, time.Now())
}

func (s *ConversationService) Messages(ctx context.Context, conversationID, requesterID uuid.UUID) ([]*domain.Message, error) {
	if _, err := s.access(ctx, conversationID, requesterID); err != nil {
		return nil, err
	}
	return s.msgRepo.ListByConversation(ctx, conversationID)
}

// ConversationSummary pairs a conversation with the requesting user's unread
// count for it.
type ConversationSummary struct {
	Conversation *domain.Conversation `json:"conversation"`
	UnreadCount  int64                `json:"unreadCount"`
}

func (s *ConversationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*ConversationSummary, error) {
	convs, err := s.convRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		unread, err := s.msgRepo.CountUnread(ctx, conv.ID, userID)
		if err != nil {
			s.logger.Warn("failed to count unread messages",
				zap.String("conversation_id", conv.ID.String()),
				zap.Error(err))
		}
		summaries = append(summaries, &ConversationSummary{
			Conversation: conv,
			UnreadCount:  unread,
		})
	}
	return summaries, nil
}

func (s *ConversationService) access(ctx context.Context, conversationID, userID uuid.UUID) (*domain.Conversation, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !conv.Participant(userID) {
		return nil, domain.ErrForbidden
	}
	return conv, nil
}
