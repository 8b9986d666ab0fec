package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted, BookingCancelled},
}

// CanTransition reports whether from -> to is a legal booking transition.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking is a single scheduled engagement between a client principal and a
// creative profile. Rows are never deleted; cancellation is a terminal
// status, not removal. Status is mutated only through the booking service.
type Booking struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primary_key"`
	ClientID    uuid.UUID     `json:"clientId" gorm:"type:uuid;index;not null"`
	CreativeID  uuid.UUID     `json:"creativeId" gorm:"type:uuid;index;not null"`
	ServiceID   uuid.UUID     `json:"serviceId" gorm:"type:uuid;not null"`
	BookingDate time.Time     `json:"bookingDate" gorm:"not null"`
	StartTime   string        `json:"startTime" gorm:"type:varchar(10);not null"`
	EndTime     string        `json:"endTime" gorm:"type:varchar(10);not null"`
	TotalAmount int64         `json:"totalAmount" gorm:"not null"`
	Notes       string        `json:"notes" gorm:"type:text"`
	Status      BookingStatus `json:"status" gorm:"type:varchar(20);index;not null;default:'pending'"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Relations
	Creative *CreativeProfile `json:"creative,omitempty" gorm:"foreignKey:CreativeID"`
	Service  *Service         `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}
