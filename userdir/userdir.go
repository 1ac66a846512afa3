package userdir

import (
	"context"
	"errors"
)

// ErrNotFound is an exported constant or variable used by the session engine.
var ErrNotFound = errors.New("credential not found")

// Credential defines a public type used by authsessions APIs.
//
// Credential instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Credential struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string

	// RefreshToken is the last refresh token issued to this credential.
	// Kept for directory-only deployments without a session cache.
	RefreshToken string
}

// Directory is the credential store consumed by the session engine.
// Implementations must be safe for concurrent use.
type Directory interface {
	// FindByUsername returns the credential for username or ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*Credential, error)
	// FindByRefreshToken returns the credential holding token or ErrNotFound.
	// Legacy lookup path for deployments without a session cache.
	FindByRefreshToken(ctx context.Context, token string) (*Credential, error)
	// Create inserts a new credential and fills in its ID.
	Create(ctx context.Context, cred *Credential) error
	// Save persists changes to an existing credential.
	Save(ctx context.Context, cred *Credential) error
}

// UnitOfWork groups directory writes into one transaction. fn receives a
// Directory bound to the transaction; returning an error rolls everything
// back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, dir Directory) error) error
}
