package service

import (
	"testing"
	"time"

	"github.com/Agus3160/blog-web-app-server-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(accessTTL, refreshTTL, resetTTL time.Duration) *TokenService {
	return NewTokenService(
		TokenConfig{Secret: "access-secret", TTL: accessTTL},
		TokenConfig{Secret: "refresh-secret", TTL: refreshTTL},
		TokenConfig{Secret: "reset-secret", TTL: resetTTL},
	)
}

func testSession() domain.SessionPayload {
	return domain.SessionPayload{
		UserID:       "user-1",
		Username:     "alice",
		Role:         domain.RoleUser,
		ProfileImage: "https://img.example/alice.webp",
	}
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	svc := newTestTokenService(time.Minute, time.Hour, time.Minute)

	token, err := svc.IssueAccess(testSession())
	require.NoError(t, err)

	got, err := svc.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, domain.RoleUser, got.Role)
	assert.Equal(t, "https://img.example/alice.webp", got.ProfileImage)
}

func TestTokenService_RefreshRoundTrip(t *testing.T) {
	svc := newTestTokenService(time.Minute, time.Hour, time.Minute)

	token, err := svc.IssueRefresh(testSession())
	require.NoError(t, err)

	got, err := svc.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
}

func TestTokenService_ResetRoundTrip(t *testing.T) {
	svc := newTestTokenService(time.Minute, time.Hour, time.Minute)

	token, err := svc.IssueReset("user-42")
	require.NoError(t, err)

	userID, err := svc.VerifyReset(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

// A token minted for one purpose must never verify under another, even
// though all three share the same claim transport.
func TestTokenService_CrossPurposeRejected(t *testing.T) {
	svc := newTestTokenService(time.Minute, time.Hour, time.Minute)

	access, err := svc.IssueAccess(testSession())
	require.NoError(t, err)
	refresh, err := svc.IssueRefresh(testSession())
	require.NoError(t, err)
	reset, err := svc.IssueReset("user-1")
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyAccess(reset)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyReset(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_ExpiredAccessDistinguished(t *testing.T) {
	svc := newTestTokenService(-time.Minute, time.Hour, time.Minute)

	token, err := svc.IssueAccess(testSession())
	require.NoError(t, err)

	_, err = svc.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

// Refresh and reset verification collapse every failure, expiry included,
// into the invalid error.
func TestTokenService_ExpiredRefreshAndResetAreInvalid(t *testing.T) {
	svc := newTestTokenService(time.Minute, -time.Hour, -time.Minute)

	refresh, err := svc.IssueRefresh(testSession())
	require.NoError(t, err)
	_, err = svc.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	reset, err := svc.IssueReset("user-1")
	require.NoError(t, err)
	_, err = svc.VerifyReset(reset)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_TamperedTokenRejected(t *testing.T) {
	svc := newTestTokenService(time.Minute, time.Hour, time.Minute)

	token, err := svc.IssueAccess(testSession())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.VerifyAccess(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyAccess("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyAccess("")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
