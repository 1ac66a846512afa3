package flows

import (
	"context"
	"time"

	"github.com/joaofns/authsessions/session"
)

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
}

// CredentialRecord is a flow-local credential model used by login and account
// flows.
type CredentialRecord struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	RefreshToken string
}

// SessionStore is the session-cache surface consumed by the flows.
type SessionStore interface {
	Rotate(ctx context.Context, priorToken string, rec *session.Record, ip string, ttl time.Duration) error
	DeleteSession(ctx context.Context, refreshToken, email, ip string) error
	MassRevoke(ctx context.Context, email, ip string) error
}

// Caller identifies the authenticated principal resolved from the request
// context by the routing layer.
type Caller struct {
	Username string
	Email    string
}

// AuditEmit is the audit hook shared by all flows. meta is lazily evaluated
// so disabled auditing costs nothing.
type AuditEmit func(ctx context.Context, event string, success bool, username, email, ip string, failure error, meta func() map[string]string)

func noopAudit(context.Context, string, bool, string, string, string, error, func() map[string]string) {
}
