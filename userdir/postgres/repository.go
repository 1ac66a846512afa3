package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/joaofns/authsessions/userdir"
)

// Repository implements userdir.Directory against a DBTX handle, so the same
// query set runs inside and outside a transaction.
type Repository struct {
	db DBTX
}

// NewRepository creates a [Repository] over db.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// FindByUsername describes the findbyusername operation and its observable behavior.
//
// FindByUsername may return an error when input validation, dependency calls, or security checks fail.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*userdir.Credential, error) {
	query := `SELECT id, username, email, password_hash, COALESCE(refresh_token, '')
	          FROM credentials WHERE username = $1`

	cred := &userdir.Credential{}
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&cred.ID, &cred.Username, &cred.Email, &cred.PasswordHash, &cred.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userdir.ErrNotFound
		}
		return nil, fmt.Errorf("query credential by username: %w", err)
	}

	return cred, nil
}

// FindByRefreshToken describes the findbyrefreshtoken operation and its observable behavior.
//
// FindByRefreshToken may return an error when input validation, dependency calls, or security checks fail.
func (r *Repository) FindByRefreshToken(ctx context.Context, token string) (*userdir.Credential, error) {
	query := `SELECT id, username, email, password_hash, COALESCE(refresh_token, '')
	          FROM credentials WHERE refresh_token = $1`

	cred := &userdir.Credential{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&cred.ID, &cred.Username, &cred.Email, &cred.PasswordHash, &cred.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userdir.ErrNotFound
		}
		return nil, fmt.Errorf("query credential by refresh token: %w", err)
	}

	return cred, nil
}

// Create inserts cred and fills in its generated ID.
func (r *Repository) Create(ctx context.Context, cred *userdir.Credential) error {
	query := `INSERT INTO credentials (username, email, password_hash, refresh_token)
	          VALUES ($1, $2, $3, NULLIF($4, ''))
	          RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		cred.Username, cred.Email, cred.PasswordHash, cred.RefreshToken).Scan(&cred.ID)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}

	return nil
}

// Save persists changes to an existing credential.
func (r *Repository) Save(ctx context.Context, cred *userdir.Credential) error {
	query := `UPDATE credentials
	          SET email = $2, password_hash = $3, refresh_token = NULLIF($4, '')
	          WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		cred.ID, cred.Email, cred.PasswordHash, cred.RefreshToken)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if affected == 0 {
		return userdir.ErrNotFound
	}

	return nil
}
