// Package auth implements the session lifecycle for trainers: registration
// with hashed credentials, login, refresh-token rotation, and logout. A
// trainer holds at most one live refresh token; every successful register,
// login, or refresh replaces it, and the stored value doubles as the
// revocation record.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/poketrainer/trainer-api/token"
	"github.com/poketrainer/trainer-api/trainers"
)

// Session is the result of a successful register or login: the trainer
// (secret fields stripped at the transport layer via json tags) and a
// fresh token pair.
type Session struct {
	Trainer *trainers.Trainer
	Tokens  *token.Pair
}

// SessionService orchestrates the credential and session-token lifecycle.
// It owns no state of its own; all per-trainer state lives in the repo.
type SessionService struct {
	repo    trainers.Repo
	issuer  *token.Issuer
	nowTime func() time.Time // injectable for testing
}

type SessionServiceOption func(*SessionService)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) SessionServiceOption {
	return func(s *SessionService) {
		s.nowTime = nowFunc
	}
}

func NewSessionService(repo trainers.Repo, issuer *token.Issuer, options ...SessionServiceOption) (*SessionService, error) {
	if repo == nil {
		return nil, errors.New("[NewSessionService] trainers repo is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewSessionService] token issuer is required")
	}

	service := &SessionService{
		repo:    repo,
		issuer:  issuer,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// Register creates a trainer with a hashed password and opens a session.
// Returns trainers.ErrDuplicateEmail when the email is already registered;
// the existing trainer is left untouched.
func (s *SessionService) Register(ctx context.Context, firstName, email, password string) (*Session, error) {
	passwordHash, err := trainers.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "SessionService.Register HashPassword")
	}

	trainer, err := s.repo.Create(ctx, &trainers.Trainer{
		FirstName:    firstName,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Team:         []string{},
	})
	if err != nil {
		if errors.Is(err, trainers.ErrDuplicateEmail) {
			return nil, trainers.ErrDuplicateEmail
		}
		return nil, errors.Wrap(err, "SessionService.Register Create")
	}

	tokens, err := s.openSession(ctx, trainer.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Trainer: trainer, Tokens: tokens}, nil
}

// Login verifies the credentials and opens a fresh session. Any refresh
// token issued earlier for this trainer is invalidated by the overwrite,
// even if it had not expired. A failed login leaves the stored refresh
// token untouched.
func (s *SessionService) Login(ctx context.Context, email, password string) (*Session, error) {
	trainer, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, trainers.ErrNotFound) {
			return nil, ErrAuthFailure
		}
		return nil, errors.Wrap(err, "SessionService.Login GetByEmail")
	}

	if !trainers.CheckPasswordHash(password, trainer.PasswordHash) {
		return nil, ErrAuthFailure
	}

	tokens, err := s.openSession(ctx, trainer.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Trainer: trainer, Tokens: tokens}, nil
}

// Refresh rotates a refresh token. The presented token must decode against
// the refresh signing domain AND textually equal the stored value; the
// compare-and-swap happens atomically in the repo, so the token just
// presented can never satisfy a future Refresh. A structurally valid,
// unexpired token that does not match the stored value is an ErrAuthFailure:
// that mismatch is the revocation mechanism.
func (s *SessionService) Refresh(ctx context.Context, presented string) (*token.Pair, error) {
	claims, err := s.issuer.DecodeRefresh(presented)
	if err != nil {
		return nil, err // token.ErrTokenMalformed or token.ErrTokenExpired
	}

	pair, err := s.issuer.Issue(claims.TrainerID)
	if err != nil {
		return nil, errors.Wrap(err, "SessionService.Refresh Issue")
	}

	if err := s.repo.RotateRefreshToken(ctx, claims.TrainerID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, trainers.ErrNotFound) || errors.Is(err, trainers.ErrRefreshTokenMismatch) {
			return nil, ErrAuthFailure
		}
		return nil, errors.Wrap(err, "SessionService.Refresh RotateRefreshToken")
	}
	return pair, nil
}

// Logout revokes the trainer's refresh token by clearing the stored value.
// Idempotent: clearing an already-nil token succeeds, and an unknown
// trainer id is a no-op.
func (s *SessionService) Logout(ctx context.Context, trainerID string) error {
	if err := s.repo.SetRefreshToken(ctx, trainerID, nil); err != nil {
		if errors.Is(err, trainers.ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "SessionService.Logout SetRefreshToken")
	}
	return nil
}

func (s *SessionService) openSession(ctx context.Context, trainerID string) (*token.Pair, error) {
	pair, err := s.issuer.Issue(trainerID)
	if err != nil {
		return nil, errors.Wrap(err, "SessionService.openSession Issue")
	}
	if err := s.repo.SetRefreshToken(ctx, trainerID, &pair.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "SessionService.openSession SetRefreshToken")
	}
	return pair, nil
}

// NormalizeEmail lowercases and trims an email so lookups and the unique
// constraint agree regardless of input casing.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
