package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const resetTokenTTL = 15 * time.Minute

// AuthService is the session authority: it owns sign-in/sign-up/sign-out,
// password reset, profile updates, and the per-request resolution of the
// authenticated principal into an AppUser. Concurrent resolutions of the
// same principal are coalesced so a caller never races a resolution already
// in flight.
type AuthService struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	clientRepo   repository.ClientProfileRepository
	creativeRepo repository.CreativeProfileRepository
	resolver     *IdentityResolver
	approval     *ApprovalService
	cfg          *config.Config
	logger       *zap.Logger
	resolveGroup singleflight.Group
}

func NewAuthService(
	repos *repository.Repositories,
	resolver *IdentityResolver,
	approval *ApprovalService,
	cfg *config.Config,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     repos.User,
		sessionRepo:  repos.Session,
		clientRepo:   repos.ClientProfile,
		creativeRepo: repos.CreativeProfile,
		resolver:     resolver,
		approval:     approval,
		cfg:          cfg,
		logger:       logger,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Location string
	Role     domain.Role

	// Creative signup
	Profession string
	Category   string

	// Client signup
	CompanyName string
	Industry    string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User         *domain.AppUser
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if len(input.Password) < 8 {
		return nil, ErrWeakPassword
	}

	role := input.Role
	if role == "" {
		role = domain.RoleClient
	}
	if role == domain.RoleAdmin || !role.IsValid() {
		// Admins are provisioned out of band, never through public signup.
		return nil, domain.ErrForbidden
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Metadata: map[string]interface{}{
			domain.MetaFullName:   input.Name,
			domain.MetaPhone:      input.Phone,
			domain.MetaLocation:   input.Location,
			domain.MetaUserType:   string(role),
			domain.MetaProfession: input.Profession,
			domain.MetaCategory:   input.Category,
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.provisionProfile(ctx, user, input); err != nil {
		return nil, err
	}

	appUser, err := s.resolver.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, appUser)
}

// provisionProfile creates the role-specific profile record for a fresh
// principal. For creatives this must tolerate a store-side hook having
// created the row already: wait once, check for an existing row keyed by the
// user id, create only if absent.
func (s *AuthService) provisionProfile(ctx context.Context, user *domain.User, input RegisterInput) error {
	switch domain.Role(user.Meta(domain.MetaUserType)) {
	case domain.RoleCreative:
		title := input.Profession
		if title == "" {
			title = "Creative Professional"
		}
		_, err := s.approval.EnsureCreativeProfile(ctx, user.ID, CreativeProfileInput{
			Title:    title,
			Category: input.Category,
		})
		return err

	default:
		if _, err := s.clientRepo.GetByID(ctx, user.ID); err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.clientRepo.Create(ctx, &domain.ClientProfile{
			ID:          user.ID,
			Email:       user.Email,
			FullName:    input.Name,
			Phone:       input.Phone,
			Location:    input.Location,
			CompanyName: input.CompanyName,
			Industry:    input.Industry,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		})
	}
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	appUser, err := s.resolver.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, appUser)
}

// CurrentUser resolves the principal behind userID into an AppUser. A
// principal row that has disappeared means the session is dead: the refresh
// sessions are removed and the caller sees "no user" instead of an error it
// would retry forever. Concurrent calls for the same principal share one
// resolution.
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.AppUser, error) {
	v, err, _ := s.resolveGroup.Do(userID.String(), func() (interface{}, error) {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Info("session principal no longer exists, forcing sign-out",
					zap.String("user_id", userID.String()))
				if derr := s.sessionRepo.DeleteByUserID(ctx, userID); derr != nil {
					s.logger.Warn("failed to clear dead sessions", zap.Error(derr))
				}
				return nil, domain.ErrNotAuthenticated
			}
			return nil, err
		}
		return s.resolver.Resolve(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.AppUser), nil
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.sessionRepo.DeleteByUserID(ctx, userID)
}

// ResetPassword issues a short-lived single-purpose token for the account
// behind email. The result is the same whether or not the account exists so
// the endpoint cannot be used to enumerate addresses; the token is empty in
// the unknown-account case.
func (s *AuthService) ResetPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	claims := jwt.MapClaims{
		"sub":     user.ID.String(),
		"purpose": "password_reset",
		"exp":     time.Now().Add(resetTokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", err
	}

	s.logger.Info("password reset token issued", zap.String("user_id", user.ID.String()))
	return signed, nil
}

func (s *AuthService) CompleteReset(ctx context.Context, tokenString, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	claims, err := s.parseToken(tokenString)
	if err != nil {
		return ErrInvalidResetToken
	}
	if purpose, _ := (*claims)["purpose"].(string); purpose != "password_reset" {
		return ErrInvalidResetToken
	}
	sub, _ := (*claims)["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// Old refresh sessions die with the old password.
	return s.sessionRepo.DeleteByUserID(ctx, userID)
}

type UpdateProfileInput struct {
	Name     *string
	Phone    *string
	Location *string

	// Client fields
	CompanyName *string
	Industry    *string

	// Creative fields
	Title      *string
	Category   *string
	Bio        *string
	HourlyRate *int64
	Skills     []string
}

// UpdateProfile dispatches to the client or creative profile record based on
// the caller's resolved role and returns the freshly re-resolved user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.AppUser, error) {
	appUser, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch appUser.Role {
	case domain.RoleClient:
		if err := s.updateClientProfile(ctx, userID, input); err != nil {
			return nil, err
		}
	case domain.RoleCreative:
		if err := s.updateCreativeProfile(ctx, userID, input); err != nil {
			return nil, err
		}
	case domain.RoleAdmin:
		if err := s.updateAdminMetadata(ctx, userID, input); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrNotAuthenticated
	}

	// The snapshot is stale after any profile write; resolve again.
	return s.CurrentUser(ctx, userID)
}

func (s *AuthService) updateClientProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) error {
	profile, err := s.clientRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	if input.Name != nil {
		profile.FullName = *input.Name
	}
	if input.Phone != nil {
		profile.Phone = *input.Phone
	}
	if input.Location != nil {
		profile.Location = *input.Location
	}
	if input.CompanyName != nil {
		profile.CompanyName = *input.CompanyName
	}
	if input.Industry != nil {
		profile.Industry = *input.Industry
	}
	profile.UpdatedAt = time.Now()

	return s.clientRepo.Update(ctx, profile)
}

func (s *AuthService) updateCreativeProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) error {
	profile, err := s.creativeRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	if input.Title != nil {
		profile.Title = *input.Title
	}
	if input.Category != nil {
		profile.Category = *input.Category
	}
	if input.Bio != nil {
		profile.Bio = *input.Bio
	}
	if input.HourlyRate != nil {
		profile.HourlyRate = *input.HourlyRate
	}
	if input.Skills != nil {
		skills, err := marshalSkills(input.Skills)
		if err != nil {
			return err
		}
		profile.Skills = skills
	}
	profile.UpdatedAt = time.Now()

	return s.creativeRepo.Update(ctx, profile)
}

func (s *AuthService) updateAdminMetadata(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Metadata == nil {
		user.Metadata = map[string]interface{}{}
	}
	if input.Name != nil {
		user.Metadata[domain.MetaFullName] = *input.Name
	}
	if input.Phone != nil {
		user.Metadata[domain.MetaPhone] = *input.Phone
	}
	if input.Location != nil {
		user.Metadata[domain.MetaLocation] = *input.Location
	}
	user.UpdatedAt = time.Now()
	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) generateTokens(ctx context.Context, user *domain.AppUser) (*AuthResult, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.New().String()
	hashedRefresh, err := bcrypt.GenerateFromPassword([]byte(refreshToken), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// One active session per principal.
	_ = s.sessionRepo.DeleteByUserID(ctx, user.ID)

	session := &domain.UserSession{
		ID:               uuid.New(),
		UserID:           user.ID,
		RefreshTokenHash: string(hashedRefresh),
		ExpiresAt:        time.Now().Add(7 * 24 * time.Hour),
		CreatedAt:        time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) generateAccessToken(user *domain.AppUser) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*jwt.MapClaims, error) {
	return s.parseToken(tokenString)
}

func (s *AuthService) parseToken(tokenString string) (*jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return &claims, nil
	}

	return nil, errors.New("invalid token")
}
