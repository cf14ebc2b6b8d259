package auth_test

import (
	"context"
	"testing"

	"kanmind-api/internal/apperr"
	"kanmind-api/internal/auth"
	"kanmind-api/internal/models"
	"kanmind-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T) (*auth.TokenService, *models.User) {
	t.Helper()
	db := testutil.MustDB(t)
	user := testutil.SeedUser(t, db, "anna@example.com", "Anna Schmidt")
	return auth.NewTokenService(db, auth.NewSigner("secret", "iss", "aud", 0)), user
}

func TestIssueFor_ReusesToken(t *testing.T) {
	ctx := context.Background()
	svc, user := newTokenService(t)

	first, err := svc.IssueFor(ctx, user)
	require.NoError(t, err)
	second, err := svc.IssueFor(ctx, user)
	require.NoError(t, err)
	require.Equal(t, first, second)

	got, err := svc.Resolve(ctx, first)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestRevoke_InvalidatesToken(t *testing.T) {
	ctx := context.Background()
	svc, user := newTokenService(t)

	old, err := svc.IssueFor(ctx, user)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, user.ID))
	require.NoError(t, svc.Revoke(ctx, user.ID))

	_, err = svc.Resolve(ctx, old)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)

	fresh, err := svc.IssueFor(ctx, user)
	require.NoError(t, err)
	require.NotEqual(t, old, fresh)

	_, err = svc.Resolve(ctx, fresh)
	require.NoError(t, err)
}

func TestResolve_Rejects(t *testing.T) {
	ctx := context.Background()
	db := testutil.MustDB(t)
	user := testutil.SeedUser(t, db, "anna@example.com", "Anna Schmidt")
	svc := auth.NewTokenService(db, auth.NewSigner("secret", "iss", "aud", 0))

	_, err := svc.Resolve(ctx, "garbage")
	require.ErrorIs(t, err, apperr.ErrInvalidToken)

	// Correctly signed but never stored.
	forged, err := auth.NewSigner("secret", "iss", "aud", 0).Sign(user.ID, "not-stored", user.CreatedAt)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, forged)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)

	token, err := svc.IssueFor(ctx, user)
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	_, err = svc.Resolve(ctx, token)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}
