package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status accepts no further transition; there
// is no re-submission flow.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityBusy        AvailabilityStatus = "busy"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

func (s AvailabilityStatus) IsValid() bool {
	switch s {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityUnavailable:
		return true
	}
	return false
}

// ClientProfile is 1:1 with a principal acting as a client, keyed by the
// principal id itself.
type ClientProfile struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email       string    `json:"email" gorm:"not null"`
	FullName    string    `json:"fullName" gorm:"not null"`
	Phone       string    `json:"phone"`
	Location    string    `json:"location"`
	CompanyName string    `json:"companyName"`
	Industry    string    `json:"industry"`
	AvatarURL   string    `json:"avatarUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreativeProfile is 1:1 with a principal acting as a creative. It carries
// its own id; UserID is a lookup back-reference, not ownership. The unique
// index on UserID is the last line of defense for the at-most-one invariant;
// registration still does an explicit check-then-create.
type CreativeProfile struct {
	ID                uuid.UUID          `json:"id" gorm:"type:uuid;primary_key"`
	UserID            uuid.UUID          `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Title             string             `json:"title" gorm:"not null"`
	Category          string             `json:"category" gorm:"index;not null"`
	Bio               string             `json:"bio" gorm:"type:text"`
	HourlyRate        int64              `json:"hourlyRate" gorm:"not null;default:50000"`
	Rating            float64            `json:"rating" gorm:"not null;default:0"`
	ReviewsCount      int                `json:"reviewsCount" gorm:"not null;default:0"`
	CompletedProjects int                `json:"completedProjects" gorm:"not null;default:0"`
	ApprovalStatus    ApprovalStatus     `json:"approvalStatus" gorm:"type:varchar(20);index;not null;default:'pending'"`
	Availability      AvailabilityStatus `json:"availabilityStatus" gorm:"type:varchar(20);not null;default:'available'"`
	Skills            datatypes.JSON     `json:"skills"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`

	// Relations
	Services  []*Service       `json:"services,omitempty" gorm:"foreignKey:CreativeID"`
	Portfolio []*PortfolioItem `json:"portfolio,omitempty" gorm:"foreignKey:CreativeID"`
}

// Service is a bookable offering owned by a creative profile.
type Service struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreativeID   uuid.UUID `json:"creativeId" gorm:"type:uuid;index;not null"`
	Title        string    `json:"title" gorm:"not null"`
	Description  string    `json:"description" gorm:"type:text"`
	Price        int64     `json:"price" gorm:"not null"`
	DeliveryDays int       `json:"deliveryDays" gorm:"not null;default:7"`
	Active       bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type PortfolioItem struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreativeID  uuid.UUID `json:"creativeId" gorm:"type:uuid;index;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    string    `json:"imageUrl"`
	ProjectURL  string    `json:"projectUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}
