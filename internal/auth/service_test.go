package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignupHashesPassword(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestService(newFakeTokenStore(), users)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "A@B.com", "Passw0rd"))

	// Email is normalized on the way in.
	user, err := users.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)

	assert.NotEqual(t, "Passw0rd", user.PasswordHash, "plaintext must never be stored")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Passw0rd")))
}

func TestSignupDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestService(newFakeTokenStore(), users)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "a@b.com", "Passw0rd"))

	err := svc.Signup(ctx, "a@b.com", "Passw0rd2")
	assert.Error(t, err)
}

func TestSignupThenLogin(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestService(newFakeTokenStore(), users)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "a@b.com", "Passw0rd"))

	pair, err := svc.Login(ctx, "a@b.com", "Passw0rd")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestService(newFakeTokenStore(), users)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "a@b.com", "Passw0rd"))

	_, wrongPassword := svc.Login(ctx, "a@b.com", "WrongPass1")
	_, unknownEmail := svc.Login(ctx, "nobody@b.com", "Passw0rd")

	// Account enumeration protection: both paths yield the exact same
	// error value.
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownEmail)
}

func TestAuthenticateAcceptsIssuedToken(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestService(newFakeTokenStore(), users)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "a@b.com", "Passw0rd"))
	pair, err := svc.Login(ctx, "a@b.com", "Passw0rd")
	require.NoError(t, err)

	userCtx, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)

	stored, err := users.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, userCtx.UserID)
	assert.Equal(t, pair.AccessToken, userCtx.Token)
	assert.True(t, userCtx.ExpiresAt.After(time.Now()))
}

func TestLogoutRevokesOnlyThatToken(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestService(newFakeTokenStore(), users)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "a@b.com", "Passw0rd"))

	// Two concurrent logins for the same user. These run back-to-back,
	// usually inside the same second, so the invariant below must not
	// depend on issuance timestamps differing.
	first, err := svc.Login(ctx, "a@b.com", "Passw0rd")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "a@b.com", "Passw0rd")
	require.NoError(t, err)
	require.NotEqual(t, first.AccessToken, second.AccessToken,
		"concurrent logins must yield distinct tokens, or revocation cannot be per-token")

	firstCtx, err := svc.Authenticate(ctx, first.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, firstCtx.Token, firstCtx.ExpiresAt))

	_, err = svc.Authenticate(ctx, first.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked, "logged-out token must be rejected")

	_, err = svc.Authenticate(ctx, second.AccessToken)
	assert.NoError(t, err, "the user's other session must stay valid")
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	users := newFakeUserStore()
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Millisecond, 24*time.Hour)
	svc := NewService(users, issuer, NewBlacklist(newFakeTokenStore()))
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "a@b.com", "Passw0rd"))
	pair, err := svc.Login(ctx, "a@b.com", "Passw0rd")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = svc.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAuthenticateDeniesOnStoreFailure(t *testing.T) {
	users := newFakeUserStore()
	store := newFakeTokenStore()
	svc := newTestService(store, users)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "a@b.com", "Passw0rd"))
	pair, err := svc.Login(ctx, "a@b.com", "Passw0rd")
	require.NoError(t, err)

	store.existsErr = errors.New("redis unreachable")

	// A blacklist outage must deny, not silently skip the revocation
	// check.
	_, err = svc.Authenticate(ctx, pair.AccessToken)
	assert.Error(t, err)
}

func TestLogoutOfExpiredTokenLeavesStoreUntouched(t *testing.T) {
	users := newFakeUserStore()
	store := newFakeTokenStore()
	svc := newTestService(store, users)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, "stale-token", time.Now().Add(-time.Minute)))
	assert.Equal(t, 0, store.size())
}
