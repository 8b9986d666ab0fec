package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "active"
	ConversationArchived ConversationStatus = "archived"
)

// Conversation is a messaging thread between a client and a creative,
// optionally tied to a booking. At most one row exists per
// (client, creative, booking) triple; the coordinator checks before
// creating. LastMessageAt is bumped to each new message's creation time.
type Conversation struct {
	ID            uuid.UUID          `json:"id" gorm:"type:uuid;primary_key"`
	BookingID     *uuid.UUID         `json:"bookingId,omitempty" gorm:"type:uuid;index"`
	ClientID      uuid.UUID          `json:"clientId" gorm:"type:uuid;index;not null"`
	CreativeID    uuid.UUID          `json:"creativeId" gorm:"type:uuid;index;not null"`
	Status        ConversationStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	LastMessageAt time.Time          `json:"lastMessageAt" gorm:"index;not null"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// Participant reports whether userID is a party to the conversation.
func (c *Conversation) Participant(userID uuid.UUID) bool {
	return c.ClientID == userID || c.CreativeID == userID
}

// Other returns the counter-party of userID.
func (c *Conversation) Other(userID uuid.UUID) uuid.UUID {
	if c.ClientID == userID {
		return c.CreativeID
	}
	return c.ClientID
}

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageSystem MessageType = "system"
)

// Message is immutable once created except for ReadAt, which moves one way
// from null to a timestamp.
type Message struct {
	ID             uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	ConversationID uuid.UUID   `json:"conversationId" gorm:"type:uuid;index;not null"`
	SenderID       uuid.UUID   `json:"senderId" gorm:"type:uuid;index;not null"`
	Content        string      `json:"content" gorm:"type:text;not null"`
	MessageType    MessageType `json:"messageType" gorm:"type:varchar(20);not null;default:'text'"`
	ReadAt         *time.Time  `json:"readAt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}
