package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/atelierhq/atelier/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	ts       *testutil.TestServer
	client   *domain.User
	creative *domain.User
	profile  *domain.CreativeProfile
	svc      *domain.Service
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	ts := testutil.NewTestServer(t)
	client, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
	creative, profile := testutil.NewCreativeBuilder().Build(t, ts.DB)
	svc := testutil.NewServiceBuilder(profile.ID).Build(t, ts.DB)

	return &bookingFixture{
		ts:       ts,
		client:   client,
		creative: creative,
		profile:  profile,
		svc:      svc,
	}
}

func (f *bookingFixture) createInput() service.CreateBookingInput {
	return service.CreateBookingInput{
		CreativeID:  f.profile.ID,
		ServiceID:   f.svc.ID,
		BookingDate: time.Now().AddDate(0, 0, 7),
		StartTime:   "10:00",
		EndTime:     "12:00",
		TotalAmount: 25000,
	}
}

func TestBookingCreate(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	booking, err := f.ts.Services.Booking.Create(ctx, f.client.ID, f.createInput())
	require.NoError(t, err)

	assert.Equal(t, domain.BookingPending, booking.Status)
	assert.Equal(t, f.client.ID, booking.ClientID)
	assert.Equal(t, f.profile.ID, booking.CreativeID)
}

func TestBookingCreate_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("zero amount", func(t *testing.T) {
		f := newBookingFixture(t)
		input := f.createInput()
		input.TotalAmount = 0
		_, err := f.ts.Services.Booking.Create(ctx, f.client.ID, input)
		assert.ErrorIs(t, err, service.ErrInvalidAmount)
	})

	t.Run("unknown creative", func(t *testing.T) {
		f := newBookingFixture(t)
		input := f.createInput()
		input.CreativeID = uuid.New()
		_, err := f.ts.Services.Booking.Create(ctx, f.client.ID, input)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("pending creative not bookable", func(t *testing.T) {
		f := newBookingFixture(t)
		_, pendingProfile := testutil.NewCreativeBuilder().
			WithStatus(domain.ApprovalPending).
			Build(t, f.ts.DB)
		svc := testutil.NewServiceBuilder(pendingProfile.ID).Build(t, f.ts.DB)

		input := f.createInput()
		input.CreativeID = pendingProfile.ID
		input.ServiceID = svc.ID
		_, err := f.ts.Services.Booking.Create(ctx, f.client.ID, input)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unavailable creative not bookable", func(t *testing.T) {
		f := newBookingFixture(t)
		_, busyProfile := testutil.NewCreativeBuilder().
			WithAvailability(domain.AvailabilityUnavailable).
			Build(t, f.ts.DB)
		svc := testutil.NewServiceBuilder(busyProfile.ID).Build(t, f.ts.DB)

		input := f.createInput()
		input.CreativeID = busyProfile.ID
		input.ServiceID = svc.ID
		_, err := f.ts.Services.Booking.Create(ctx, f.client.ID, input)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("inactive service", func(t *testing.T) {
		f := newBookingFixture(t)
		inactive := testutil.NewServiceBuilder(f.profile.ID).Inactive().Build(t, f.ts.DB)

		input := f.createInput()
		input.ServiceID = inactive.ID
		_, err := f.ts.Services.Booking.Create(ctx, f.client.ID, input)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("service owned by another creative", func(t *testing.T) {
		f := newBookingFixture(t)
		_, otherProfile := testutil.NewCreativeBuilder().Build(t, f.ts.DB)
		foreign := testutil.NewServiceBuilder(otherProfile.ID).Build(t, f.ts.DB)

		input := f.createInput()
		input.ServiceID = foreign.ID
		_, err := f.ts.Services.Booking.Create(ctx, f.client.ID, input)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("creative cannot book themselves", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.ts.Services.Booking.Create(ctx, f.creative.ID, f.createInput())
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestBookingTransition_Legality(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.BookingStatus
		to      domain.BookingStatus
		wantErr error
	}{
		{"pending to confirmed", domain.BookingPending, domain.BookingConfirmed, nil},
		{"pending to cancelled", domain.BookingPending, domain.BookingCancelled, nil},
		{"pending to in_progress skips confirm", domain.BookingPending, domain.BookingInProgress, domain.ErrInvalidTransition},
		{"pending to completed skips everything", domain.BookingPending, domain.BookingCompleted, domain.ErrInvalidTransition},
		{"confirmed to in_progress", domain.BookingConfirmed, domain.BookingInProgress, nil},
		{"confirmed to cancelled", domain.BookingConfirmed, domain.BookingCancelled, nil},
		{"confirmed to completed skips in_progress", domain.BookingConfirmed, domain.BookingCompleted, domain.ErrInvalidTransition},
		{"in_progress to completed", domain.BookingInProgress, domain.BookingCompleted, nil},
		{"in_progress to cancelled", domain.BookingInProgress, domain.BookingCancelled, nil},
		{"completed is terminal", domain.BookingCompleted, domain.BookingCancelled, domain.ErrInvalidTransition},
		{"cancelled is terminal", domain.BookingCancelled, domain.BookingConfirmed, domain.ErrInvalidTransition},
		{"unknown status value", domain.BookingPending, domain.BookingStatus("bogus"), domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			booking := testutil.NewBookingBuilder(f.client.ID, f.profile.ID, f.svc.ID).
				WithStatus(tt.from).
				Build(t, f.ts.DB)

			_, err := f.ts.Services.Booking.Transition(context.Background(), f.creative.ID, booking.ID, tt.to)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				// A rejected transition must leave the stored status untouched.
				stored, gerr := f.ts.Repos.Booking.GetByID(context.Background(), booking.ID)
				require.NoError(t, gerr)
				assert.Equal(t, tt.from, stored.Status)
			} else {
				require.NoError(t, err)
				stored, gerr := f.ts.Repos.Booking.GetByID(context.Background(), booking.ID)
				require.NoError(t, gerr)
				assert.Equal(t, tt.to, stored.Status)
			}
		})
	}
}

func TestBookingTransition_Authorization(t *testing.T) {
	ctx := context.Background()

	t.Run("client cannot confirm", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := testutil.NewBookingBuilder(f.client.ID, f.profile.ID, f.svc.ID).Build(t, f.ts.DB)

		_, err := f.ts.Services.Booking.Transition(ctx, f.client.ID, booking.ID, domain.BookingConfirmed)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("client cannot cancel a pending request", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := testutil.NewBookingBuilder(f.client.ID, f.profile.ID, f.svc.ID).Build(t, f.ts.DB)

		_, err := f.ts.Services.Booking.Transition(ctx, f.client.ID, booking.ID, domain.BookingCancelled)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("client can cancel once confirmed", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := testutil.NewBookingBuilder(f.client.ID, f.profile.ID, f.svc.ID).
			WithStatus(domain.BookingConfirmed).
			Build(t, f.ts.DB)

		updated, err := f.ts.Services.Booking.Transition(ctx, f.client.ID, booking.ID, domain.BookingCancelled)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingCancelled, updated.Status)
	})

	t.Run("stranger sees forbidden", func(t *testing.T) {
		f := newBookingFixture(t)
		stranger, _ := testutil.NewUserBuilder().BuildClient(t, f.ts.DB)
		booking := testutil.NewBookingBuilder(f.client.ID, f.profile.ID, f.svc.ID).Build(t, f.ts.DB)

		_, err := f.ts.Services.Booking.Transition(ctx, stranger.ID, booking.ID, domain.BookingConfirmed)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.ts.Services.Booking.Transition(ctx, f.creative.ID, uuid.New(), domain.BookingConfirmed)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingTransition_ConfirmSideEffects(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	booking := testutil.NewBookingBuilder(f.client.ID, f.profile.ID, f.svc.ID).Build(t, f.ts.DB)

	_, err := f.ts.Services.Booking.Transition(ctx, f.creative.ID, booking.ID, domain.BookingConfirmed)
	require.NoError(t, err)

	// A conversation now links the two user ids and the booking.
	conv, err := f.ts.Repos.Conversation.FindByPair(ctx, f.client.ID, f.creative.ID)
	require.NoError(t, err)
	require.NotNil(t, conv.BookingID)
	assert.Equal(t, booking.ID, *conv.BookingID)

	// The client, as counter-party, got a durable notification.
	notifications, err := f.ts.Repos.Notification.ListByUser(ctx, f.client.ID, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationBookingStatus, notifications[0].Type)
}

func TestBookingTransition_ConfirmReusesExistingConversation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	// A thread between the pair already exists, not linked to any booking.
	existing, err := f.ts.Services.Conversation.EnsureConversation(ctx, f.client.ID, f.creative.ID, nil)
	require.NoError(t, err)

	booking := testutil.NewBookingBuilder(f.client.ID, f.profile.ID, f.svc.ID).Build(t, f.ts.DB)
	_, err = f.ts.Services.Booking.Transition(ctx, f.creative.ID, booking.ID, domain.BookingConfirmed)
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.ts.DB.Model(&domain.Conversation{}).
		Where("client_id = ? AND creative_id = ?", f.client.ID, f.creative.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count, "existing thread must be reused")

	conv, err := f.ts.Repos.Conversation.FindByPair(ctx, f.client.ID, f.creative.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, conv.ID)
}

func TestBookingTransition_DoubleConfirm(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	booking := testutil.NewBookingBuilder(f.client.ID, f.profile.ID, f.svc.ID).Build(t, f.ts.DB)

	_, err := f.ts.Services.Booking.Transition(ctx, f.creative.ID, booking.ID, domain.BookingConfirmed)
	require.NoError(t, err)

	// The second confirm re-reads confirmed state, so the transition table
	// rejects it before the guarded write.
	_, err = f.ts.Services.Booking.Transition(ctx, f.creative.ID, booking.ID, domain.BookingConfirmed)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestBookingRepo_GuardedUpdateDetectsRace(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	booking := testutil.NewBookingBuilder(f.client.ID, f.profile.ID, f.svc.ID).Build(t, f.ts.DB)

	// First writer wins.
	require.NoError(t, f.ts.Repos.Booking.UpdateStatus(ctx, booking.ID, domain.BookingPending, domain.BookingConfirmed))

	// Second writer still holds the pending snapshot and must lose.
	err := f.ts.Repos.Booking.UpdateStatus(ctx, booking.ID, domain.BookingPending, domain.BookingCancelled)
	assert.ErrorIs(t, err, domain.ErrStaleState)

	// Missing row reads as not found, not stale.
	err = f.ts.Repos.Booking.UpdateStatus(ctx, uuid.New(), domain.BookingPending, domain.BookingConfirmed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingTransition_CompletedIncrementsProjects(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	booking := testutil.NewBookingBuilder(f.client.ID, f.profile.ID, f.svc.ID).
		WithStatus(domain.BookingInProgress).
		Build(t, f.ts.DB)

	_, err := f.ts.Services.Booking.Transition(ctx, f.creative.ID, booking.ID, domain.BookingCompleted)
	require.NoError(t, err)

	profile, err := f.ts.Repos.CreativeProfile.GetByID(ctx, f.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.CompletedProjects)
}

func TestBookingGetAndList(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	booking := testutil.NewBookingBuilder(f.client.ID, f.profile.ID, f.svc.ID).Build(t, f.ts.DB)

	t.Run("parties can read", func(t *testing.T) {
		got, err := f.ts.Services.Booking.Get(ctx, f.client.ID, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.ID, got.ID)

		got, err = f.ts.Services.Booking.Get(ctx, f.creative.ID, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.ID, got.ID)
	})

	t.Run("stranger cannot read", func(t *testing.T) {
		stranger, _ := testutil.NewUserBuilder().BuildClient(t, f.ts.DB)
		_, err := f.ts.Services.Booking.Get(ctx, stranger.ID, booking.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("each side lists their view", func(t *testing.T) {
		clientBookings, err := f.ts.Services.Booking.ListForUser(ctx, f.client.ID)
		require.NoError(t, err)
		require.Len(t, clientBookings, 1)

		creativeBookings, err := f.ts.Services.Booking.ListForUser(ctx, f.creative.ID)
		require.NoError(t, err)
		require.Len(t, creativeBookings, 1)
		assert.Equal(t, clientBookings[0].ID, creativeBookings[0].ID)
	})
}
