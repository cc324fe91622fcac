// Package postgres provides the PostgreSQL-backed trainers.Repo. It runs
// over database/sql with the pgx stdlib driver, and implements refresh-token
// rotation as a single conditional UPDATE so the compare-and-swap is
// serialized by the database row, not by application locks.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/poketrainer/trainer-api/trainers"
	"github.com/poketrainer/trainer-api/trainers/postgres/migrations"
)

const uniqueViolation = "23505" // PostgreSQL error code for unique_violation

var _ trainers.Repo = (*Repo)(nil)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Open connects to PostgreSQL through the pgx stdlib driver and verifies
// the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (r *Repo) Create(ctx context.Context, trainer *trainers.Trainer) (*trainers.Trainer, error) {
	team, err := json.Marshal(teamOrEmpty(trainer.Team))
	if err != nil {
		return nil, fmt.Errorf("team marshal error: %w", err)
	}

	query := `
		INSERT INTO trainers (first_name, last_name, email, password_hash, team)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	created := trainer.Clone()
	err = r.db.QueryRowContext(ctx, query,
		trainer.FirstName, trainer.LastName, trainer.Email, trainer.PasswordHash, team).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, trainers.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*trainers.Trainer, error) {
	query := selectTrainer + ` WHERE lower(email) = lower($1)`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *Repo) GetByID(ctx context.Context, id string) (*trainers.Trainer, error) {
	query := selectTrainer + ` WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *Repo) Update(ctx context.Context, trainer *trainers.Trainer) (*trainers.Trainer, error) {
	team, err := json.Marshal(teamOrEmpty(trainer.Team))
	if err != nil {
		return nil, fmt.Errorf("team marshal error: %w", err)
	}

	query := `
		UPDATE trainers
		SET first_name = $2, last_name = $3, email = $4, password_hash = $5,
		    team = $6, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	updated := trainer.Clone()
	err = r.db.QueryRowContext(ctx, query,
		trainer.ID, trainer.FirstName, trainer.LastName, trainer.Email,
		trainer.PasswordHash, team).
		Scan(&updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trainers.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, trainers.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return updated, nil
}

func (r *Repo) SetRefreshToken(ctx context.Context, id string, token *string) error {
	query := `
		UPDATE trainers
		SET refresh_token = $2, updated_at = now()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkRowAffected(result, trainers.ErrNotFound)
}

// RotateRefreshToken swaps the stored refresh token for next only when the
// current value equals presented. The conditional UPDATE is one atomic
// statement, so two concurrent rotations presenting the same token cannot
// both pass: the loser matches zero rows.
func (r *Repo) RotateRefreshToken(ctx context.Context, id, presented, next string) error {
	query := `
		UPDATE trainers
		SET refresh_token = $3, updated_at = now()
		WHERE id = $1 AND refresh_token = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, presented, next)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := checkRowAffected(result, trainers.ErrRefreshTokenMismatch); err != nil {
		// Distinguish a missing trainer from a token mismatch.
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, trainers.ErrNotFound) {
			return trainers.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trainers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkRowAffected(result, trainers.ErrNotFound)
}

func (r *Repo) List(ctx context.Context) ([]*trainers.Trainer, error) {
	rows, err := r.db.QueryContext(ctx, selectTrainer+` ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var all []*trainers.Trainer
	for rows.Next() {
		trainer, err := scanTrainer(rows.Scan)
		if err != nil {
			return nil, err
		}
		all = append(all, trainer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return all, nil
}

const selectTrainer = `
	SELECT id, first_name, last_name, email, password_hash, refresh_token,
	       team, created_at, updated_at
	FROM trainers`

func (r *Repo) scanOne(row *sql.Row) (*trainers.Trainer, error) {
	trainer, err := scanTrainer(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trainers.ErrNotFound
		}
		return nil, err
	}
	return trainer, nil
}

func scanTrainer(scan func(dest ...any) error) (*trainers.Trainer, error) {
	trainer := &trainers.Trainer{}
	var (
		refreshToken sql.NullString
		team         []byte
		createdAt    time.Time
		updatedAt    time.Time
	)
	err := scan(&trainer.ID, &trainer.FirstName, &trainer.LastName, &trainer.Email,
		&trainer.PasswordHash, &refreshToken, &team, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db scan error: %w", err)
	}
	if refreshToken.Valid {
		trainer.RefreshToken = &refreshToken.String
	}
	if err := json.Unmarshal(team, &trainer.Team); err != nil {
		return nil, fmt.Errorf("team unmarshal error: %w", err)
	}
	trainer.CreatedAt = createdAt
	trainer.UpdatedAt = updatedAt
	return trainer, nil
}

func checkRowAffected(result sql.Result, missing error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func teamOrEmpty(team []string) []string {
	if team == nil {
		return []string{}
	}
	return team
}
