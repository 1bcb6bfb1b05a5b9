package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newAuthServiceForTest(t *testing.T) *AuthService {
	t.Helper()

	svc, err := NewAuthService("test-secret", 15*time.Minute, time.Hour, newMemUserStore(), newMemTokenStore())
	require.NoError(t, err)
	require.NoError(t, svc.SeedDefaultAdmin(context.Background(), "admin123"))
	return svc
}

func TestAuthServiceLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("seeded admin can log in", func(t *testing.T) {
		svc := newAuthServiceForTest(t)

		pair, err := svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, "admin", pair.User.Role)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		claims, err := svc.ValidateToken(pair.AccessToken, "access")
		require.NoError(t, err)
		require.Equal(t, "admin", claims.Username)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		svc := newAuthServiceForTest(t)

		_, err := svc.Login(ctx, "admin", "nope")
		require.Error(t, err)
	})

	t.Run("seeding is a no-op once users exist", func(t *testing.T) {
		svc := newAuthServiceForTest(t)
		require.NoError(t, svc.SeedDefaultAdmin(ctx, "different"))

		_, err := svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
	})
}

func TestAuthServiceRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("defaults to viewer role", func(t *testing.T) {
		svc := newAuthServiceForTest(t)

		user, err := svc.Register(ctx, "quant1", "Password123!", "")
		require.NoError(t, err)
		require.Equal(t, "viewer", user.Role)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		svc := newAuthServiceForTest(t)

		_, err := svc.Register(ctx, "quant2", "Password123!", "superuser")
		require.Error(t, err)
	})

	t.Run("rejects duplicate usernames", func(t *testing.T) {
		svc := newAuthServiceForTest(t)

		_, err := svc.Register(ctx, "quant3", "Password123!", "validator")
		require.NoError(t, err)
		_, err = svc.Register(ctx, "quant3", "Other456!", "validator")
		require.Error(t, err)
	})
}

func TestAuthServiceRefreshRotation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newAuthServiceForTest(t)

	pair, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, rotated.AccessToken)

	// The consumed refresh token is revoked and cannot be replayed.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)

	// An access token is never accepted where a refresh token is expected.
	_, err = svc.Refresh(ctx, rotated.AccessToken)
	require.Error(t, err)
}

func TestAuthServiceLogout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newAuthServiceForTest(t)

	pair, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	svc.Logout(ctx, pair.RefreshToken)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
}
