package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrAlreadyDecided = errors.New("profile approval already decided")

// ApprovalService owns the creative profile lifecycle: the guaranteed-once
// creation at registration and the admin-only pending -> approved/rejected
// gate that controls listing visibility and bookability.
type ApprovalService struct {
	userRepo     repository.UserRepository
	creativeRepo repository.CreativeProfileRepository
	resolver     *IdentityResolver
	notifier     *NotificationService
	cfg          *config.Config
	logger       *zap.Logger
}

func NewApprovalService(
	repos *repository.Repositories,
	resolver *IdentityResolver,
	notifier *NotificationService,
	cfg *config.Config,
	logger *zap.Logger,
) *ApprovalService {
	return &ApprovalService{
		userRepo:     repos.User,
		creativeRepo: repos.CreativeProfile,
		resolver:     resolver,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
	}
}

type CreativeProfileInput struct {
	Title      string
	Category   string
	Bio        string
	HourlyRate int64
	Skills     []string
}

// EnsureCreativeProfile guarantees at most one creative profile per
// principal even when a store-side provisioning hook races the application's
// own create. Protocol: wait once for the hook to settle, check for an
// existing row keyed by the user id, create only if absent. A duplicate-key
// failure on the insert means the hook won the race after the check; the
// existing row is returned.
func (s *ApprovalService) EnsureCreativeProfile(ctx context.Context, userID uuid.UUID, input CreativeProfileInput) (*domain.CreativeProfile, error) {
	if s.cfg.ProfileSettleDelay > 0 {
		select {
		case <-time.After(s.cfg.ProfileSettleDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	existing, err := s.creativeRepo.GetByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hourlyRate := input.HourlyRate
	if hourlyRate <= 0 {
		hourlyRate = 50000
	}
	skills, err := marshalSkills(input.Skills)
	if err != nil {
		return nil, err
	}

	profile := &domain.CreativeProfile{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          input.Title,
		Category:       input.Category,
		Bio:            input.Bio,
		HourlyRate:     hourlyRate,
		ApprovalStatus: domain.ApprovalPending,
		Availability:   domain.AvailabilityAvailable,
		Skills:         skills,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.creativeRepo.Create(ctx, profile); err != nil {
		if isUniqueViolation(err) {
			s.logger.Info("creative profile already provisioned concurrently",
				zap.String("user_id", userID.String()))
			return s.creativeRepo.GetByUserID(ctx, userID)
		}
		return nil, err
	}

	return profile, nil
}

func (s *ApprovalService) Approve(ctx context.Context, actorID, profileID uuid.UUID) (*domain.CreativeProfile, error) {
	return s.decide(ctx, actorID, profileID, domain.ApprovalApproved)
}

func (s *ApprovalService) Reject(ctx context.Context, actorID, profileID uuid.UUID) (*domain.CreativeProfile, error) {
	return s.decide(ctx, actorID, profileID, domain.ApprovalRejected)
}

func (s *ApprovalService) decide(ctx context.Context, actorID, profileID uuid.UUID, outcome domain.ApprovalStatus) (*domain.CreativeProfile, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	profile, err := s.creativeRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if profile.ApprovalStatus.IsTerminal() {
		return nil, ErrAlreadyDecided
	}

	profile.ApprovalStatus = outcome
	profile.UpdatedAt = time.Now()
	if err := s.creativeRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, profile.UserID, domain.NotificationProfileOutcome, map[string]interface{}{
		"profile_id": profile.ID.String(),
		"outcome":    string(outcome),
	})

	return profile, nil
}

func (s *ApprovalService) ListPending(ctx context.Context, actorID uuid.UUID) ([]*domain.CreativeProfile, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.creativeRepo.ListByStatus(ctx, domain.ApprovalPending)
}

func (s *ApprovalService) requireAdmin(ctx context.Context, actorID uuid.UUID) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotAuthenticated
		}
		return err
	}

	appUser, err := s.resolver.Resolve(ctx, actor)
	if err != nil {
		return err
	}
	if appUser.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func marshalSkills(skills []string) (datatypes.JSON, error) {
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// isUniqueViolation matches both gorm's translated error and the raw driver
// message, which differs between postgres and sqlite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
