package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestOTPStore(t *testing.T) (*OTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewOTPStore(client, 10*time.Minute, 15*time.Minute), mr
}

func TestOTPIssueAndVerify(t *testing.T) {
	store, _ := newTestOTPStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	token, err := store.Verify(ctx, "buyer@example.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// The code is consumed on success.
	_, err = store.Verify(ctx, "buyer@example.com", code)
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestOTPVerifyWrongCode(t *testing.T) {
	store, _ := newTestOTPStore(t)
	ctx := context.Background()

	_, err := store.Issue(ctx, "buyer@example.com")
	require.NoError(t, err)

	_, err = store.Verify(ctx, "buyer@example.com", "000000")
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestOTPVerifyUnknownEmail(t *testing.T) {
	store, _ := newTestOTPStore(t)
	_, err := store.Verify(context.Background(), "nobody@example.com", "123456")
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestOTPBruteForceBurnsCode(t *testing.T) {
	store, _ := newTestOTPStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "buyer@example.com")
	require.NoError(t, err)

	for i := 0; i < otpMaxAttempts; i++ {
		_, err = store.Verify(ctx, "buyer@example.com", "999999")
		require.ErrorIs(t, err, ErrOTPInvalid)
	}

	// Even the right code fails once the attempt budget is spent.
	_, err = store.Verify(ctx, "buyer@example.com", code)
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestOTPExpires(t *testing.T) {
	store, mr := newTestOTPStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "buyer@example.com")
	require.NoError(t, err)

	mr.FastForward(11 * time.Minute)

	_, err = store.Verify(ctx, "buyer@example.com", code)
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestResetTokenSingleUse(t *testing.T) {
	store, _ := newTestOTPStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "buyer@example.com")
	require.NoError(t, err)
	token, err := store.Verify(ctx, "buyer@example.com", code)
	require.NoError(t, err)

	email, err := store.ConsumeResetToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "buyer@example.com", email)

	_, err = store.ConsumeResetToken(ctx, token)
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetTokenExpires(t *testing.T) {
	store, mr := newTestOTPStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "buyer@example.com")
	require.NoError(t, err)
	token, err := store.Verify(ctx, "buyer@example.com", code)
	require.NoError(t, err)

	mr.FastForward(16 * time.Minute)

	_, err = store.ConsumeResetToken(ctx, token)
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestDenylistRevocation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	denylist := NewTokenDenylist(client)
	ctx := context.Background()

	revoked, err := denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, denylist.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	mr.FastForward(2 * time.Minute)

	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)
}
