package service_test

import (
	"context"
	"testing"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/atelierhq/atelier/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprove(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, ts.DB)
	creative, profile := testutil.NewCreativeBuilder().
		WithStatus(domain.ApprovalPending).
		Build(t, ts.DB)

	updated, err := ts.Services.Approval.Approve(ctx, admin.ID, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, updated.ApprovalStatus)

	// The creative is told about the outcome.
	notifications, err := ts.Repos.Notification.ListByUser(ctx, creative.ID, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationProfileOutcome, notifications[0].Type)

	// Approval flips the resolved Approved flag.
	appUser, err := ts.Services.Auth.CurrentUser(ctx, creative.ID)
	require.NoError(t, err)
	assert.True(t, appUser.Approved)
}

func TestReject(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, ts.DB)
	_, profile := testutil.NewCreativeBuilder().
		WithStatus(domain.ApprovalPending).
		Build(t, ts.DB)

	updated, err := ts.Services.Approval.Reject(ctx, admin.ID, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalRejected, updated.ApprovalStatus)
}

func TestApprove_NonAdminForbidden(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	client, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
	_, profile := testutil.NewCreativeBuilder().
		WithStatus(domain.ApprovalPending).
		Build(t, ts.DB)

	_, err := ts.Services.Approval.Approve(ctx, client.ID, profile.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// A creative cannot approve their own profile either.
	owner, ownProfile := testutil.NewCreativeBuilder().
		WithStatus(domain.ApprovalPending).
		Build(t, ts.DB)
	_, err = ts.Services.Approval.Approve(ctx, owner.ID, ownProfile.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApprove_AlreadyDecided(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, ts.DB)
	_, profile := testutil.NewCreativeBuilder().
		WithStatus(domain.ApprovalPending).
		Build(t, ts.DB)

	_, err := ts.Services.Approval.Approve(ctx, admin.ID, profile.ID)
	require.NoError(t, err)

	// Terminal states accept no further decision, in either direction.
	_, err = ts.Services.Approval.Approve(ctx, admin.ID, profile.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyDecided)
	_, err = ts.Services.Approval.Reject(ctx, admin.ID, profile.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyDecided)
}

func TestListPending(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, ts.DB)
	_, pending := testutil.NewCreativeBuilder().WithStatus(domain.ApprovalPending).Build(t, ts.DB)
	testutil.NewCreativeBuilder().WithStatus(domain.ApprovalApproved).Build(t, ts.DB)

	profiles, err := ts.Services.Approval.ListPending(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, pending.ID, profiles[0].ID)
}

func TestListApproved_ExcludesUndecided(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	_, approved := testutil.NewCreativeBuilder().WithStatus(domain.ApprovalApproved).Build(t, ts.DB)
	testutil.NewCreativeBuilder().WithStatus(domain.ApprovalPending).Build(t, ts.DB)
	testutil.NewCreativeBuilder().WithStatus(domain.ApprovalRejected).Build(t, ts.DB)

	profiles, err := ts.Services.Creative.ListApproved(ctx, "", 20, 0)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, approved.ID, profiles[0].ID)
}

func TestGetPublic_HidesNonApproved(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	_, pending := testutil.NewCreativeBuilder().WithStatus(domain.ApprovalPending).Build(t, ts.DB)

	_, err := ts.Services.Creative.GetPublic(ctx, pending.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "pending profiles are indistinguishable from absent")
}

func TestEnsureCreativeProfile_Idempotent(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithRole(domain.RoleCreative).Build(t, ts.DB)

	first, err := ts.Services.Approval.EnsureCreativeProfile(ctx, user.ID, service.CreativeProfileInput{
		Title:    "Photographer",
		Category: "photo",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, first.ApprovalStatus)

	// The repeat call must return the same row and ignore the new input.
	second, err := ts.Services.Approval.EnsureCreativeProfile(ctx, user.ID, service.CreativeProfileInput{
		Title: "Different Title",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Photographer", second.Title)
}
