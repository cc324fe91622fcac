// Package token creates and verifies the two classes of signed,
// time-bounded tokens used by the API: short-lived access tokens and
// long-lived refresh tokens. The two classes are signed with independent
// secrets so a refresh token can never pass as an access token or vice
// versa.
package token

import (
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrTokenMalformed covers structurally invalid tokens, wrong signing
	// methods, and bad signatures.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired covers tokens with a valid signature whose lifetime
	// has lapsed. Callers react differently to the two failures: an expired
	// access token is refreshed, an expired refresh token forces re-login.
	ErrTokenExpired = errors.New("token expired")
)

const (
	defaultAccessExpiry  = time.Minute
	defaultRefreshExpiry = 15 * 24 * time.Hour
)

// Claims is the claim set carried by both token classes.
type Claims struct {
	jwt.RegisteredClaims
	TrainerID string `json:"trainer_id"`
}

// Pair bundles the access and refresh tokens issued together on every
// register, login, and refresh.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer signs and verifies token pairs. Access and refresh tokens use
// independent HMAC-SHA256 secrets and independent expirations.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	nowFunc       func() time.Time
}

type IssuerOption func(*Issuer)

// WithExpiry overrides the access and refresh token lifetimes.
func WithExpiry(accessExpiry, refreshExpiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessExpiry = accessExpiry
		i.refreshExpiry = refreshExpiry
	}
}

// WithNowFunc sets the clock (primarily for testing).
func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

// NewIssuer creates an Issuer from the two signing secrets. The secrets
// must be non-empty and must differ: a shared secret would collapse the
// boundary between the two token classes.
func NewIssuer(accessSecret, refreshSecret string, options ...IssuerOption) (*Issuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("[NewIssuer] access and refresh secrets are required")
	}
	if subtle.ConstantTimeCompare([]byte(accessSecret), []byte(refreshSecret)) == 1 {
		return nil, errors.New("[NewIssuer] access and refresh secrets must differ")
	}

	issuer := &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  defaultAccessExpiry,
		refreshExpiry: defaultRefreshExpiry,
		nowFunc:       time.Now,
	}
	for _, opt := range options {
		opt(issuer)
	}
	return issuer, nil
}

// Issue mints a fresh access/refresh pair for the trainer. The two tokens
// are always issued together; there is no access-only path.
func (i *Issuer) Issue(trainerID string) (*Pair, error) {
	accessToken, err := i.sign(trainerID, i.accessSecret, i.accessExpiry)
	if err != nil {
		return nil, errors.Wrap(err, "Issuer.Issue access token")
	}
	refreshToken, err := i.sign(trainerID, i.refreshSecret, i.refreshExpiry)
	if err != nil {
		return nil, errors.Wrap(err, "Issuer.Issue refresh token")
	}
	return &Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// DecodeAccess verifies raw against the access signing domain.
func (i *Issuer) DecodeAccess(raw string) (*Claims, error) {
	return i.decode(raw, i.accessSecret)
}

// DecodeRefresh verifies raw against the refresh signing domain.
func (i *Issuer) DecodeRefresh(raw string) (*Claims, error) {
	return i.decode(raw, i.refreshSecret)
}

func (i *Issuer) sign(trainerID string, secret []byte, expiry time.Duration) (string, error) {
	now := i.nowFunc()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
		TrainerID: trainerID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i *Issuer) decode(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.nowFunc))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !parsed.Valid || claims.TrainerID == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
