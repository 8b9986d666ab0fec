package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test principals with a builder pattern.
type UserBuilder struct {
	email    string
	password string
	name     string
	role     domain.Role
	metadata map[string]interface{}
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:    fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
		password: "testpassword123",
		name:     "Test User",
		role:     domain.RoleClient,
	}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithRole(role domain.Role) *UserBuilder {
	b.role = role
	return b
}

func (b *UserBuilder) WithMetadata(key string, value interface{}) *UserBuilder {
	if b.metadata == nil {
		b.metadata = map[string]interface{}{}
	}
	b.metadata[key] = value
	return b
}

// Build creates the user row and returns it with the raw password.
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	metadata := map[string]interface{}{
		domain.MetaFullName: b.name,
		domain.MetaUserType: string(b.role),
	}
	for k, v := range b.metadata {
		metadata[k] = v
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		Metadata:     metadata,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user, b.password
}

// BuildClient creates the user together with its client profile, the state a
// completed client registration leaves behind.
func (b *UserBuilder) BuildClient(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, db)
	profile := &domain.ClientProfile{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  b.name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create client profile: %v", err)
	}
	return user, password
}

// CreativeBuilder creates a user plus creative profile pair.
type CreativeBuilder struct {
	userBuilder  *UserBuilder
	title        string
	category     string
	status       domain.ApprovalStatus
	availability domain.AvailabilityStatus
	hourlyRate   int64
}

func NewCreativeBuilder() *CreativeBuilder {
	return &CreativeBuilder{
		userBuilder:  NewUserBuilder().WithRole(domain.RoleCreative),
		title:        "Test Creative",
		category:     "design",
		status:       domain.ApprovalApproved,
		availability: domain.AvailabilityAvailable,
		hourlyRate:   50000,
	}
}

func (b *CreativeBuilder) WithTitle(title string) *CreativeBuilder {
	b.title = title
	return b
}

func (b *CreativeBuilder) WithCategory(category string) *CreativeBuilder {
	b.category = category
	return b
}

func (b *CreativeBuilder) WithStatus(status domain.ApprovalStatus) *CreativeBuilder {
	b.status = status
	return b
}

func (b *CreativeBuilder) WithAvailability(availability domain.AvailabilityStatus) *CreativeBuilder {
	b.availability = availability
	return b
}

func (b *CreativeBuilder) WithEmail(email string) *CreativeBuilder {
	b.userBuilder.WithEmail(email)
	return b
}

func (b *CreativeBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, *domain.CreativeProfile) {
	t.Helper()

	user, _ := b.userBuilder.Build(t, db)
	profile := &domain.CreativeProfile{
		ID:             uuid.New(),
		UserID:         user.ID,
		Title:          b.title,
		Category:       b.category,
		HourlyRate:     b.hourlyRate,
		ApprovalStatus: b.status,
		Availability:   b.availability,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create creative profile: %v", err)
	}
	return user, profile
}

// ServiceBuilder creates a bookable service for a creative profile.
type ServiceBuilder struct {
	creativeID uuid.UUID
	title      string
	price      int64
	active     bool
}

func NewServiceBuilder(creativeID uuid.UUID) *ServiceBuilder {
	return &ServiceBuilder{
		creativeID: creativeID,
		title:      "Test Service",
		price:      25000,
		active:     true,
	}
}

func (b *ServiceBuilder) WithPrice(price int64) *ServiceBuilder {
	b.price = price
	return b
}

func (b *ServiceBuilder) Inactive() *ServiceBuilder {
	b.active = false
	return b
}

func (b *ServiceBuilder) Build(t *testing.T, db *gorm.DB) *domain.Service {
	t.Helper()

	svc := &domain.Service{
		ID:           uuid.New(),
		CreativeID:   b.creativeID,
		Title:        b.title,
		Price:        b.price,
		DeliveryDays: 7,
		Active:       b.active,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(svc).Error; err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}
	return svc
}

// BookingBuilder creates bookings directly in the store, bypassing the
// service-layer preconditions, for tests that need a booking in an arbitrary
// state.
type BookingBuilder struct {
	clientID   uuid.UUID
	creativeID uuid.UUID
	serviceID  uuid.UUID
	amount     int64
	status     domain.BookingStatus
}

func NewBookingBuilder(clientID, creativeID, serviceID uuid.UUID) *BookingBuilder {
	return &BookingBuilder{
		clientID:   clientID,
		creativeID: creativeID,
		serviceID:  serviceID,
		amount:     25000,
		status:     domain.BookingPending,
	}
}

func (b *BookingBuilder) WithStatus(status domain.BookingStatus) *BookingBuilder {
	b.status = status
	return b
}

func (b *BookingBuilder) WithAmount(amount int64) *BookingBuilder {
	b.amount = amount
	return b
}

func (b *BookingBuilder) Build(t *testing.T, db *gorm.DB) *domain.Booking {
	t.Helper()

	booking := &domain.Booking{
		ID:          uuid.New(),
		ClientID:    b.clientID,
		CreativeID:  b.creativeID,
		ServiceID:   b.serviceID,
		BookingDate: time.Now().AddDate(0, 0, 7),
		StartTime:   "10:00",
		EndTime:     "12:00",
		TotalAmount: b.amount,
		Status:      b.status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := db.Create(booking).Error; err != nil {
		t.Fatalf("failed to create test booking: %v", err)
	}
	return booking
}
