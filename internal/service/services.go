package service

import (
	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/repository"
	"github.com/atelierhq/atelier/internal/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services bundles the application layer for handler wiring.
type Services struct {
	Resolver     *IdentityResolver
	Auth         *AuthService
	Approval     *ApprovalService
	Creative     *CreativeService
	Booking      *BookingService
	Conversation *ConversationService
	Notification *NotificationService
	Review       *ReviewService
}

// NewServices wires the service graph. rdb and hub may be nil; realtime
// delivery then degrades to durable notifications only.
func NewServices(
	repos *repository.Repositories,
	cfg *config.Config,
	logger *zap.Logger,
	rdb *redis.Client,
	hub *websocket.Hub,
) *Services {
	resolver := NewIdentityResolver(repos.ClientProfile, repos.CreativeProfile, logger)
	notifier := NewNotificationService(repos.Notification, rdb, hub, logger)
	approval := NewApprovalService(repos, resolver, notifier, cfg, logger)
	auth := NewAuthService(repos, resolver, approval, cfg, logger)
	conversations := NewConversationService(repos.Conversation, repos.Message, notifier, logger)
	bookings := NewBookingService(repos, conversations, notifier, logger)

	return &Services{
		Resolver:     resolver,
		Auth:         auth,
		Approval:     approval,
		Creative:     NewCreativeService(repos, logger),
		Booking:      bookings,
		Conversation: conversations,
		Notification: notifier,
		Review:       NewReviewService(repos, logger),
	}
}
