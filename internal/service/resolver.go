package service

import (
	"context"
	"errors"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IdentityResolver turns a raw principal into exactly one typed AppUser by
// probing role-specific profile records in priority order:
//
//  1. admin metadata flag (no profile lookup)
//  2. client profile keyed by the principal id
//  3. creative profile back-referencing the principal id
//  4. best-effort fallback from signup metadata
//
// Resolution is deterministic and read-only. Lookup failures other than
// "record not found" are logged and treated as "profile absent" so a flaky
// store degrades resolution instead of breaking it.
type IdentityResolver struct {
	clientRepo   repository.ClientProfileRepository
	creativeRepo repository.CreativeProfileRepository
	logger       *zap.Logger
}

func NewIdentityResolver(clientRepo repository.ClientProfileRepository, creativeRepo repository.CreativeProfileRepository, logger *zap.Logger) *IdentityResolver {
	return &IdentityResolver{
		clientRepo:   clientRepo,
		creativeRepo: creativeRepo,
		logger:       logger,
	}
}

func (r *IdentityResolver) Resolve(ctx context.Context, principal *domain.User) (*domain.AppUser, error) {
	if principal == nil {
		return nil, domain.ErrNotAuthenticated
	}

	if principal.Meta(domain.MetaUserType) == string(domain.RoleAdmin) {
		return r.resolveAdmin(principal), nil
	}

	if client := r.lookupClient(ctx, principal); client != nil {
		return r.resolveClient(principal, client), nil
	}

	if creative := r.lookupCreative(ctx, principal); creative != nil {
		return r.resolveCreative(principal, creative), nil
	}

	return r.resolveFallback(principal), nil
}

func (r *IdentityResolver) lookupClient(ctx context.Context, principal *domain.User) *domain.ClientProfile {
	profile, err := r.clientRepo.GetByID(ctx, principal.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("client profile lookup failed, treating as absent",
				zap.String("user_id", principal.ID.String()),
				zap.Error(err))
		}
		return nil
	}
	return profile
}

func (r *IdentityResolver) lookupCreative(ctx context.Context, principal *domain.User) *domain.CreativeProfile {
	profile, err := r.creativeRepo.GetByUserID(ctx, principal.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("creative profile lookup failed, treating as absent",
				zap.String("user_id", principal.ID.String()),
				zap.Error(err))
		}
		return nil
	}
	return profile
}

func (r *IdentityResolver) resolveAdmin(principal *domain.User) *domain.AppUser {
	return &domain.AppUser{
		ID:        principal.ID,
		Email:     principal.Email,
		Name:      fallbackName(principal),
		Phone:     principal.Meta(domain.MetaPhone),
		Location:  principal.Meta(domain.MetaLocation),
		Role:      domain.RoleAdmin,
		Verified:  true,
		Approved:  true,
		CreatedAt: principal.CreatedAt,
		UpdatedAt: principal.UpdatedAt,
	}
}

func (r *IdentityResolver) resolveClient(principal *domain.User, profile *domain.ClientProfile) *domain.AppUser {
	return &domain.AppUser{
		ID:          principal.ID,
		Email:       profile.Email,
		Name:        profile.FullName,
		Phone:       profile.Phone,
		Location:    profile.Location,
		Role:        domain.RoleClient,
		Verified:    principal.EmailVerifiedAt != nil,
		Approved:    true,
		CompanyName: profile.CompanyName,
		Industry:    profile.Industry,
		CreatedAt:   profile.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
	}
}

func (r *IdentityResolver) resolveCreative(principal *domain.User, profile *domain.CreativeProfile) *domain.AppUser {
	profileID := profile.ID
	return &domain.AppUser{
		ID:                principal.ID,
		Email:             principal.Email,
		Name:              fallbackName(principal),
		Phone:             principal.Meta(domain.MetaPhone),
		Location:          principal.Meta(domain.MetaLocation),
		Role:              domain.RoleCreative,
		Verified:          principal.EmailVerifiedAt != nil,
		Approved:          profile.ApprovalStatus == domain.ApprovalApproved,
		CreativeProfileID: &profileID,
		CreatedAt:         profile.CreatedAt,
		UpdatedAt:         profile.UpdatedAt,
	}
}

// resolveFallback covers a principal mid-registration: no profile row exists
// yet, but the session is valid and must not read as unauthenticated.
func (r *IdentityResolver) resolveFallback(principal *domain.User) *domain.AppUser {
	role := domain.Role(principal.Meta(domain.MetaUserType))
	if !role.IsValid() {
		role = domain.RoleClient
	}

	return &domain.AppUser{
		ID:        principal.ID,
		Email:     principal.Email,
		Name:      fallbackName(principal),
		Phone:     principal.Meta(domain.MetaPhone),
		Location:  principal.Meta(domain.MetaLocation),
		Role:      role,
		Verified:  principal.EmailVerifiedAt != nil,
		Approved:  true,
		CreatedAt: principal.CreatedAt,
		UpdatedAt: principal.UpdatedAt,
	}
}

func fallbackName(principal *domain.User) string {
	if name := principal.Meta(domain.MetaFullName); name != "" {
		return name
	}
	return principal.Email
}
