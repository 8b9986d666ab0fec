package service_test

import (
	"context"
	"testing"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/atelierhq/atelier/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureConversation_UniquePerTriple(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	client, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
	creative, _ := testutil.NewCreativeBuilder().Build(t, ts.DB)

	first, err := ts.Services.Conversation.EnsureConversation(ctx, client.ID, creative.ID, nil)
	require.NoError(t, err)

	second, err := ts.Services.Conversation.EnsureConversation(ctx, client.ID, creative.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// A different booking id is a different triple.
	bookingID := uuid.New()
	third, err := ts.Services.Conversation.EnsureConversation(ctx, client.ID, creative.ID, &bookingID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestSendMessage_BumpsLastMessageAt(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	client, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
	creative, _ := testutil.NewCreativeBuilder().Build(t, ts.DB)

	conv, err := ts.Services.Conversation.EnsureConversation(ctx, client.ID, creative.ID, nil)
	require.NoError(t, err)

	m1, err := ts.Services.Conversation.SendMessage(ctx, conv.ID, client.ID, "hello", domain.MessageText)
	require.NoError(t, err)
	m2, err := ts.Services.Conversation.SendMessage(ctx, conv.ID, creative.ID, "hi there", domain.MessageText)
	require.NoError(t, err)

	stored, err := ts.Repos.Conversation.GetByID(ctx, conv.ID)
	require.NoError(t, err)

	// last_message_at carries the newest message's own timestamp.
	assert.WithinDuration(t, m2.CreatedAt, stored.LastMessageAt, 0)
	assert.False(t, stored.LastMessageAt.Before(m1.CreatedAt))
}

func TestSendMessage_Validation(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	client, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
	creative, _ := testutil.NewCreativeBuilder().Build(t, ts.DB)
	conv, err := ts.Services.Conversation.EnsureConversation(ctx, client.ID, creative.ID, nil)
	require.NoError(t, err)

	t.Run("empty content", func(t *testing.T) {
		_, err := ts.Services.Conversation.SendMessage(ctx, conv.ID, client.ID, "   ", domain.MessageText)
		assert.ErrorIs(t, err, service.ErrEmptyMessage)
	})

	t.Run("non-participant", func(t *testing.T) {
		stranger, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
		_, err := ts.Services.Conversation.SendMessage(ctx, conv.ID, stranger.ID, "let me in", domain.MessageText)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		_, err := ts.Services.Conversation.SendMessage(ctx, uuid.New(), client.ID, "hello?", domain.MessageText)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSendMessage_NotifiesCounterparty(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	client, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
	creative, _ := testutil.NewCreativeBuilder().Build(t, ts.DB)
	conv, err := ts.Services.Conversation.EnsureConversation(ctx, client.ID, creative.ID, nil)
	require.NoError(t, err)

	_, err = ts.Services.Conversation.SendMessage(ctx, conv.ID, client.ID, "hello", domain.MessageText)
	require.NoError(t, err)

	notifications, err := ts.Repos.Notification.ListByUser(ctx, creative.ID, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationNewMessage, notifications[0].Type)

	// The sender gets nothing.
	own, err := ts.Repos.Notification.ListByUser(ctx, client.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestMarkRead_Idempotent(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	client, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
	creative, _ := testutil.NewCreativeBuilder().Build(t, ts.DB)
	conv, err := ts.Services.Conversation.EnsureConversation(ctx, client.ID, creative.ID, nil)
	require.NoError(t, err)

	_, err = ts.Services.Conversation.SendMessage(ctx, conv.ID, client.ID, "unread", domain.MessageText)
	require.NoError(t, err)

	unread, err := ts.Repos.Message.CountUnread(ctx, conv.ID, creative.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	require.NoError(t, ts.Services.Conversation.MarkRead(ctx, conv.ID, creative.ID))
	require.NoError(t, ts.Services.Conversation.MarkRead(ctx, conv.ID, creative.ID))

	unread, err = ts.Repos.Message.CountUnread(ctx, conv.ID, creative.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	// Reading does not touch the sender's own messages from their side.
	messages, err := ts.Services.Conversation.Messages(ctx, conv.ID, client.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.NotNil(t, messages[0].ReadAt)
}

func TestListForUser_IncludesUnreadCounts(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	client, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
	creative, _ := testutil.NewCreativeBuilder().Build(t, ts.DB)
	conv, err := ts.Services.Conversation.EnsureConversation(ctx, client.ID, creative.ID, nil)
	require.NoError(t, err)

	_, err = ts.Services.Conversation.SendMessage(ctx, conv.ID, client.ID, "one", domain.MessageText)
	require.NoError(t, err)
	_, err = ts.Services.Conversation.SendMessage(ctx, conv.ID, client.ID, "two", domain.MessageText)
	require.NoError(t, err)

	summaries, err := ts.Services.Conversation.ListForUser(ctx, creative.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 2, summaries[0].UnreadCount)

	// The sender's own view has nothing unread.
	summaries, err = ts.Services.Conversation.ListForUser(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 0, summaries[0].UnreadCount)
}

func TestMessages_AccessControl(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	client, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
	creative, _ := testutil.NewCreativeBuilder().Build(t, ts.DB)
	conv, err := ts.Services.Conversation.EnsureConversation(ctx, client.ID, creative.ID, nil)
	require.NoError(t, err)

	stranger, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
	_, err = ts.Services.Conversation.Messages(ctx, conv.ID, stranger.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
