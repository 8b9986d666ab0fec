package repository

import (
	"context"
	"time"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type ClientProfileRepository interface {
	Create(ctx context.Context, profile *domain.ClientProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientProfile, error)
	Update(ctx context.Context, profile *domain.ClientProfile) error
}

type CreativeProfileRepository interface {
	Create(ctx context.Context, profile *domain.CreativeProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CreativeProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.CreativeProfile, error)
	Update(ctx context.Context, profile *domain.CreativeProfile) error
	// ListApproved is the default public listing; it never returns
	// non-approved profiles. An empty category matches all.
	ListApproved(ctx context.Context, category string, limit, offset int) ([]*domain.CreativeProfile, error)
	ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]*domain.CreativeProfile, error)
}

type ServiceRepository interface {
	Create(ctx context.Context, svc *domain.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Service, error)
	Update(ctx context.Context, svc *domain.Service) error
	ListByCreative(ctx context.Context, creativeID uuid.UUID) ([]*domain.Service, error)
}

type PortfolioRepository interface {
	Create(ctx context.Context, item *domain.PortfolioItem) error
	ListByCreative(ctx context.Context, creativeID uuid.UUID) ([]*domain.PortfolioItem, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// UpdateStatus performs a guarded write: the status column is changed
	// only if the stored value still equals from. A lost race surfaces as
	// domain.ErrStaleState, a missing row as domain.ErrNotFound.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Booking, error)
	ListByCreative(ctx context.Context, creativeID uuid.UUID) ([]*domain.Booking, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	// FindByParticipants matches the full (client, creative, booking)
	// triple, including a null booking id when bookingID is nil.
	FindByParticipants(ctx context.Context, clientID, creativeID uuid.UUID, bookingID *uuid.UUID) (*domain.Conversation, error)
	// FindByPair matches any conversation between the two parties
	// regardless of booking linkage, newest activity first.
	FindByPair(ctx context.Context, clientID, creativeID uuid.UUID) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)
	SetLastMessageAt(ctx context.Context, id uuid.UUID, at time.Time) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error)
	// MarkRead stamps ReadAt on every unread message in the conversation
	// not sent by readerID; re-invocation is a no-op.
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) error
	CountUnread(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*domain.Review, error)
	ListByCreative(ctx context.Context, creativeID uuid.UUID) ([]*domain.Review, error)
}

type Repositories struct {
	User            UserRepository
	Session         SessionRepository
	ClientProfile   ClientProfileRepository
	CreativeProfile CreativeProfileRepository
	Service         ServiceRepository
	Portfolio       PortfolioRepository
	Booking         BookingRepository
	Conversation    ConversationRepository
	Message         MessageRepository
	Notification    NotificationRepository
	Review          ReviewRepository
}
