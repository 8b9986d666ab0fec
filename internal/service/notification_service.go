package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/repository"
	"github.com/atelierhq/atelier/internal/websocket"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService persists per-user notifications and fans them out over
// redis pub/sub and the in-process websocket hub. The durable row is the
// source of truth; realtime delivery is best effort and its failures are
// logged, never propagated.
type NotificationService struct {
	repo   repository.NotificationRepository
	rdb    *redis.Client
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, rdb *redis.Client, hub *websocket.Hub, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		rdb:    rdb,
		hub:    hub,
		logger: logger,
	}
}

// Dispatch writes the notification row and pushes it to any live listeners.
// It is called from inside other services' side-effect paths and therefore
// never fails the caller; every failure is logged with the target user.
func (s *NotificationService) Dispatch(ctx context.Context, userID uuid.UUID, ntype domain.NotificationType, payload map[string]interface{}) *domain.Notification {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("notification payload not serializable",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil
	}

	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      ntype,
		Payload:   datatypes.JSON(raw),
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to persist notification",
			zap.String("user_id", userID.String()),
			zap.String("type", string(ntype)),
			zap.Error(err))
		return nil
	}

	s.publish(ctx, n)
	return n
}

func (s *NotificationService) publish(ctx context.Context, n *domain.Notification) {
	event, err := json.Marshal(n)
	if err != nil {
		s.logger.Error("failed to marshal notification event", zap.Error(err))
		return
	}

	// With redis configured, delivery goes through pub/sub and the bridge
	// relays it into every instance's hub, this one included. Pushing to
	// the local hub directly as well would deliver the event twice.
	if s.rdb != nil {
		channel := "notify:" + n.UserID.String()
		if err := s.rdb.Publish(ctx, channel, event).Err(); err != nil {
			s.logger.Warn("redis notification publish failed",
				zap.String("channel", channel),
				zap.Error(err))
		}
		return
	}

	if s.hub != nil {
		s.hub.SendToUser(n.UserID, event)
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead stamps ReadAt on one of the caller's notifications. Re-marking an
// already-read notification is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if n.UserID != userID {
		return domain.ErrForbidden
	}
	return s.repo.MarkRead(ctx, notificationID, time.Now())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID, time.Now())
}
