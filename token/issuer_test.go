package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poketrainer/trainer-api/token"
)

const (
	accessSecret  = "access-secret"
	refreshSecret = "refresh-secret"
	trainerID     = "9f1c7a2e-0000-4000-8000-000000000001"
)

func newTestIssuer(t *testing.T, now *time.Time, options ...token.IssuerOption) *token.Issuer {
	t.Helper()
	opts := append([]token.IssuerOption{
		token.WithNowFunc(func() time.Time { return *now }),
	}, options...)
	issuer, err := token.NewIssuer(accessSecret, refreshSecret, opts...)
	require.NoError(t, err)
	return issuer
}

func TestNewIssuerRejectsBadSecrets(t *testing.T) {
	_, err := token.NewIssuer("", refreshSecret)
	require.Error(t, err)

	_, err = token.NewIssuer(accessSecret, "")
	require.Error(t, err)

	// Sharing one secret would let a refresh token double as an access token.
	_, err = token.NewIssuer("same-secret", "same-secret")
	require.Error(t, err)
}

func TestIssueAndDecodeRoundTrip(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, &now)

	pair, err := issuer.Issue(trainerID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	accessClaims, err := issuer.DecodeAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, trainerID, accessClaims.TrainerID)

	refreshClaims, err := issuer.DecodeRefresh(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, trainerID, refreshClaims.TrainerID)
}

func TestDecodeRejectsCrossDomainTokens(t *testing.T) {
	now := time.Now()
	issuer := newTestIssuer(t, &now)

	pair, err := issuer.Issue(trainerID)
	require.NoError(t, err)

	_, err = issuer.DecodeAccess(pair.RefreshToken)
	require.ErrorIs(t, err, token.ErrTokenMalformed)

	_, err = issuer.DecodeRefresh(pair.AccessToken)
	require.ErrorIs(t, err, token.ErrTokenMalformed)
}

func TestDecodeMalformed(t *testing.T) {
	now := time.Now()
	issuer := newTestIssuer(t, &now)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := issuer.DecodeAccess(raw)
		require.ErrorIs(t, err, token.ErrTokenMalformed, "input %q", raw)
	}

	// Tampered signature fails as malformed, not expired.
	pair, err := issuer.Issue(trainerID)
	require.NoError(t, err)
	_, err = issuer.DecodeAccess(pair.AccessToken + "x")
	require.ErrorIs(t, err, token.ErrTokenMalformed)
}

func TestDecodeExpired(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, &now, token.WithExpiry(time.Minute, time.Hour))

	pair, err := issuer.Issue(trainerID)
	require.NoError(t, err)

	// Access token lapses after a minute; the refresh token is still good.
	now = now.Add(2 * time.Minute)
	_, err = issuer.DecodeAccess(pair.AccessToken)
	require.ErrorIs(t, err, token.ErrTokenExpired)

	_, err = issuer.DecodeRefresh(pair.RefreshToken)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = issuer.DecodeRefresh(pair.RefreshToken)
	require.ErrorIs(t, err, token.ErrTokenExpired)
}
