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
	"go.uber.org/zap/zaptest"
)

func newResolver(t *testing.T) (*service.IdentityResolver, *testutil.TestServer) {
	t.Helper()
	ts := testutil.NewTestServer(t)
	return ts.Services.Resolver, ts
}

func TestResolve_NilPrincipal(t *testing.T) {
	resolver, _ := newResolver(t)

	_, err := resolver.Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestResolve_AdminMetadataWinsOverProfiles(t *testing.T) {
	resolver, ts := newResolver(t)

	// Admin flag in metadata plus a client profile row; the metadata branch
	// must win without consulting the profile.
	user, _ := testutil.NewUserBuilder().
		WithRole(domain.RoleAdmin).
		BuildClient(t, ts.DB)

	appUser, err := resolver.Resolve(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleAdmin, appUser.Role)
	assert.True(t, appUser.Verified)
	assert.True(t, appUser.Approved)
	assert.Nil(t, appUser.CreativeProfileID)
}

func TestResolve_ClientProfile(t *testing.T) {
	resolver, ts := newResolver(t)

	user, _ := testutil.NewUserBuilder().
		WithName("Dana Client").
		BuildClient(t, ts.DB)

	appUser, err := resolver.Resolve(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleClient, appUser.Role)
	assert.Equal(t, "Dana Client", appUser.Name)
	assert.True(t, appUser.Approved)
	assert.False(t, appUser.Verified, "no email verification timestamp set")
}

func TestResolve_CreativeProfile(t *testing.T) {
	resolver, ts := newResolver(t)

	user, profile := testutil.NewCreativeBuilder().
		WithStatus(domain.ApprovalApproved).
		Build(t, ts.DB)

	appUser, err := resolver.Resolve(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleCreative, appUser.Role)
	assert.True(t, appUser.Approved)
	require.NotNil(t, appUser.CreativeProfileID)
	assert.Equal(t, profile.ID, *appUser.CreativeProfileID)
}

func TestResolve_PendingCreativeNotApproved(t *testing.T) {
	resolver, ts := newResolver(t)

	user, _ := testutil.NewCreativeBuilder().
		WithStatus(domain.ApprovalPending).
		Build(t, ts.DB)

	appUser, err := resolver.Resolve(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleCreative, appUser.Role)
	assert.False(t, appUser.Approved)
}

func TestResolve_FallbackUsesMetadataRole(t *testing.T) {
	resolver, ts := newResolver(t)

	// No profile rows at all: mid-registration state.
	user, _ := testutil.NewUserBuilder().
		WithRole(domain.RoleCreative).
		Build(t, ts.DB)

	appUser, err := resolver.Resolve(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleCreative, appUser.Role)
	assert.Nil(t, appUser.CreativeProfileID)
}

func TestResolve_FallbackDefaultsToClient(t *testing.T) {
	resolver, _ := newResolver(t)

	user := &domain.User{
		ID:    uuid.New(),
		Email: "no-metadata@example.com",
	}

	appUser, err := resolver.Resolve(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleClient, appUser.Role)
	assert.Equal(t, "no-metadata@example.com", appUser.Name, "name falls back to email")
}

func TestResolve_Deterministic(t *testing.T) {
	resolver, ts := newResolver(t)

	user, _ := testutil.NewCreativeBuilder().Build(t, ts.DB)

	first, err := resolver.Resolve(context.Background(), user)
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolve_ClientProfileWinsOverCreative(t *testing.T) {
	ts := testutil.NewTestServer(t)
	resolver := service.NewIdentityResolver(ts.Repos.ClientProfile, ts.Repos.CreativeProfile, zaptest.NewLogger(t))

	// Both profile rows exist; the client branch is checked first and must
	// be the one that answers.
	user, _ := testutil.NewUserBuilder().BuildClient(t, ts.DB)
	creative := &domain.CreativeProfile{
		ID:             uuid.New(),
		UserID:         user.ID,
		Title:          "Also Creative",
		Category:       "design",
		ApprovalStatus: domain.ApprovalApproved,
		Availability:   domain.AvailabilityAvailable,
	}
	require.NoError(t, ts.DB.Create(creative).Error)

	appUser, err := resolver.Resolve(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleClient, appUser.Role)
	assert.Nil(t, appUser.CreativeProfileID)
}
