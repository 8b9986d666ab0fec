package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationBookingStatus  NotificationType = "booking_status"
	NotificationProfileOutcome NotificationType = "profile_outcome"
	NotificationNewMessage     NotificationType = "new_message"
)

// Notification is a durable per-user event. ReadAt moves one way from null
// to a timestamp, same as Message.
type Notification struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID        `json:"userId" gorm:"type:uuid;index;not null"`
	Type      NotificationType `json:"type" gorm:"type:varchar(30);not null"`
	Payload   datatypes.JSON   `json:"payload"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}
