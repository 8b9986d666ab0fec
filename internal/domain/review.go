package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is written by the client of a completed booking, once per booking.
type Review struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	BookingID  uuid.UUID `json:"bookingId" gorm:"type:uuid;uniqueIndex;not null"`
	ClientID   uuid.UUID `json:"clientId" gorm:"type:uuid;index;not null"`
	CreativeID uuid.UUID `json:"creativeId" gorm:"type:uuid;index;not null"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    string    `json:"comment" gorm:"type:text"`
	CreatedAt  time.Time `json:"createdAt"`
}
