package trainers

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MaxTeamSize is the maximum number of Pokémon a trainer can carry.
const MaxTeamSize = 6

// Trainer is the authenticated principal of the API. PasswordHash and
// RefreshToken never leave the server.
type Trainer struct {
	ID           string    `json:"id,omitempty"`        // Unique identifier (UUID)
	FirstName    string    `json:"firstName,omitempty"` // First name of the trainer
	LastName     string    `json:"lastName,omitempty"`  // Last name of the trainer
	Email        string    `json:"email,omitempty"`     // Email address, unique, stored lowercase
	PasswordHash string    `json:"-"`                   // Hashed password - never serialize
	RefreshToken *string   `json:"-"`                   // Single live refresh token, nil when no session
	Team         []string  `json:"team"`                // Owned Pokémon ids, ordered, max 6, unique
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash reports whether password matches hash. A malformed hash
// is a verification failure, not an error.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// HasSession reports whether the trainer currently holds a live refresh token.
func (t *Trainer) HasSession() bool {
	return t.RefreshToken != nil && *t.RefreshToken != ""
}

// HasTeamMember reports whether pokemonID is already on the team.
func (t *Trainer) HasTeamMember(pokemonID string) bool {
	for _, id := range t.Team {
		if id == pokemonID {
			return true
		}
	}
	return false
}

// AddTeamMember appends pokemonID to the team, preserving order.
func (t *Trainer) AddTeamMember(pokemonID string) error {
	if len(t.Team) >= MaxTeamSize {
		return ErrTeamFull
	}
	if t.HasTeamMember(pokemonID) {
		return ErrAlreadyInTeam
	}
	t.Team = append(t.Team, pokemonID)
	return nil
}

// RemoveTeamMember removes pokemonID from the team, preserving the order of
// the remaining members.
func (t *Trainer) RemoveTeamMember(pokemonID string) error {
	for i, id := range t.Team {
		if id == pokemonID {
			t.Team = append(t.Team[:i], t.Team[i+1:]...)
			return nil
		}
	}
	return ErrNotInTeam
}

// Clone returns a deep copy so callers can mutate without aliasing store state.
func (t *Trainer) Clone() *Trainer {
	clone := *t
	if t.RefreshToken != nil {
		token := *t.RefreshToken
		clone.RefreshToken = &token
	}
	clone.Team = append([]string(nil), t.Team...)
	return &clone
}
