package trainers

import (
	"context"
	"errors"
)

var (
	ErrNotFound             = errors.New("trainer not found")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrRefreshTokenMismatch = errors.New("refresh token does not match stored token")
	ErrTeamFull             = errors.New("team is full")
	ErrAlreadyInTeam        = errors.New("pokemon already in team")
	ErrNotInTeam            = errors.New("pokemon not in team")
)

// Repo is the durable store of trainers. It holds at most one outstanding
// refresh token per trainer; that stored value is the authoritative
// revocation record.
type Repo interface {
	// Create persists a new trainer. An empty ID is filled in by the store.
	// Returns ErrDuplicateEmail when the email is already registered.
	Create(ctx context.Context, trainer *Trainer) (*Trainer, error)

	GetByEmail(ctx context.Context, email string) (*Trainer, error)
	GetByID(ctx context.Context, id string) (*Trainer, error)

	// Update overwrites the trainer's profile fields (names, email,
	// password hash, team). Returns ErrNotFound when absent and
	// ErrDuplicateEmail when the new email collides with another trainer.
	Update(ctx context.Context, trainer *Trainer) (*Trainer, error)

	// SetRefreshToken unconditionally overwrites the stored refresh token.
	// A nil token clears it (logout). Returns ErrNotFound when absent.
	SetRefreshToken(ctx context.Context, id string, token *string) error

	// RotateRefreshToken atomically replaces the stored refresh token with
	// next, but only when the stored value equals presented. The
	// read-compare-write is a single serializable step per trainer: of two
	// concurrent rotations presenting the same token, exactly one succeeds.
	// Returns ErrRefreshTokenMismatch when the stored value differs (or is
	// cleared) and ErrNotFound when the trainer is absent.
	RotateRefreshToken(ctx context.Context, id, presented, next string) error

	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Trainer, error)
}
