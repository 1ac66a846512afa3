package authsessions

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	// The message is deliberately generic: it never reveals whether the
	// username, the password, or a refresh token was the failing factor.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshInvalid is an exported constant or variable used by the session engine.
	// It is an ErrInvalidCredentials kind: errors.Is(ErrRefreshInvalid,
	// ErrInvalidCredentials) reports true.
	ErrRefreshInvalid = fmt.Errorf("%w: refresh token invalid", ErrInvalidCredentials)
	// ErrUserNotFound is an exported constant or variable used by the session engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrIdentityRequired is an exported constant or variable used by the session engine.
	ErrIdentityRequired = errors.New("caller identity required")
	// ErrLoginRateLimited is an exported constant or variable used by the session engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is an exported constant or variable used by the session engine.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrAccountExists is an exported constant or variable used by the session engine.
	ErrAccountExists = errors.New("account already exists")
	// ErrPasswordReuse is an exported constant or variable used by the session engine.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrValidationFailure is an exported constant or variable used by the session engine.
	ErrValidationFailure = errors.New("malformed request field")
	// ErrTransactionFailed is an exported constant or variable used by the session engine.
	ErrTransactionFailed = errors.New("credential store transaction failed")
	// ErrSessionCreationFailed is an exported constant or variable used by the session engine.
	ErrSessionCreationFailed = errors.New("session creation failed")
	// ErrSessionInvalidationFailed is an exported constant or variable used by the session engine.
	ErrSessionInvalidationFailed = errors.New("session invalidation failed")
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
