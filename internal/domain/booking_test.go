package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func mustUUID(s string) uuid.UUID {
	return uuid.MustParse(s)
}

func TestCanTransition(t *testing.T) {
	legal := map[BookingStatus][]BookingStatus{
		BookingPending:    {BookingConfirmed, BookingCancelled},
		BookingConfirmed:  {BookingInProgress, BookingCancelled},
		BookingInProgress: {BookingCompleted, BookingCancelled},
		BookingCompleted:  {},
		BookingCancelled:  {},
	}

	all := []BookingStatus{
		BookingPending, BookingConfirmed, BookingInProgress,
		BookingCompleted, BookingCancelled,
	}

	for from, allowed := range legal {
		allowedSet := make(map[BookingStatus]bool, len(allowed))
		for _, to := range allowed {
			allowedSet[to] = true
		}
		for _, to := range all {
			assert.Equal(t, allowedSet[to], CanTransition(from, to),
				"%s -> %s", from, to)
		}
	}
}

func TestBookingStatus_IsTerminal(t *testing.T) {
	assert.True(t, BookingCompleted.IsTerminal())
	assert.True(t, BookingCancelled.IsTerminal())
	assert.False(t, BookingPending.IsTerminal())
	assert.False(t, BookingConfirmed.IsTerminal())
	assert.False(t, BookingInProgress.IsTerminal())
}

func TestConversation_Participants(t *testing.T) {
	conv := Conversation{}
	conv.ClientID = mustUUID("11111111-1111-1111-1111-111111111111")
	conv.CreativeID = mustUUID("22222222-2222-2222-2222-222222222222")

	assert.True(t, conv.Participant(conv.ClientID))
	assert.True(t, conv.Participant(conv.CreativeID))
	assert.False(t, conv.Participant(mustUUID("33333333-3333-3333-3333-333333333333")))

	assert.Equal(t, conv.CreativeID, conv.Other(conv.ClientID))
	assert.Equal(t, conv.ClientID, conv.Other(conv.CreativeID))
}
