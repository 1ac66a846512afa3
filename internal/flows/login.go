package flows

import (
	"context"
	"errors"
	"time"

	"github.com/joaofns/authsessions/session"
)

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess     int
	LoginFailure     int
	LoginRateLimited int
	SessionRotated   int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess     string
	LoginFailure     string
	LoginRateLimited string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady        error
	InvalidCredentials    error
	LoginRateLimited      error
	UserNotFound          error
	SessionCreationFailed error
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	SessionTTL             time.Duration
	PasswordUpgradeOnLogin bool

	ClientIPFromContext func(context.Context) string
	Now                 func() time.Time

	CheckLoginRate     func(ctx context.Context, username, ip string) error
	IncrementLoginRate func(ctx context.Context, username, ip string) error
	ResetLoginRate     func(ctx context.Context, username, ip string) error

	FindByUsername     func(ctx context.Context, username string) (CredentialRecord, error)
	UpdatePasswordHash func(ctx context.Context, cred CredentialRecord, newHash string) error

	VerifyPassword       func(password, hash string) bool
	PasswordNeedsUpgrade func(hash string) bool
	HashPassword         func(password string) (string, error)

	IssueAccessToken func(username, email string) (string, error)
	NewRefreshToken  func() string
	Store            SessionStore

	PublishLoginNotice func(ctx context.Context, username, email, ip string) error

	MetricInc func(int)
	EmitAudit AuditEmit
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin executes the login flow: credential verification, token issuance,
// and session rotation. Credential failures collapse into one generic
// invalid-credentials error; infrastructure failures propagate as-is.
func RunLogin(ctx context.Context, username, password string, deps LoginDeps) (*LoginResult, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.FindByUsername == nil ||
		deps.VerifyPassword == nil ||
		deps.IssueAccessToken == nil ||
		deps.NewRefreshToken == nil ||
		deps.Store == nil {
		return nil, deps.Errors.EngineNotReady
	}

	ip := deps.ClientIPFromContext(ctx)

	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, username, ip); err != nil {
			deps.MetricInc(deps.Metrics.LoginRateLimited)
			deps.EmitAudit(ctx, deps.Events.LoginRateLimited, false, username, "", ip, deps.Errors.LoginRateLimited, nil)
			return nil, deps.Errors.LoginRateLimited
		}
	}

	failClosed := func(reason string, email string) (*LoginResult, error) {
		if deps.IncrementLoginRate != nil {
			if err := deps.IncrementLoginRate(ctx, username, ip); err != nil {
				deps.MetricInc(deps.Metrics.LoginRateLimited)
				deps.EmitAudit(ctx, deps.Events.LoginRateLimited, false, username, email, ip, deps.Errors.LoginRateLimited, nil)
				return nil, deps.Errors.LoginRateLimited
			}
		}
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, username, email, ip, deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{"reason": reason}
		})
		return nil, deps.Errors.InvalidCredentials
	}

	if password == "" {
		return failClosed("empty_password", "")
	}

	user, err := deps.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, deps.Errors.UserNotFound) {
			return failClosed("user_not_found", "")
		}
		return nil, err
	}

	if !deps.VerifyPassword(password, user.PasswordHash) {
		return failClosed("password_mismatch", user.Email)
	}

	if deps.PasswordUpgradeOnLogin && deps.PasswordNeedsUpgrade != nil && deps.HashPassword != nil && deps.UpdatePasswordHash != nil {
		if deps.PasswordNeedsUpgrade(user.PasswordHash) {
			if upgraded, err := deps.HashPassword(password); err == nil {
				if err := deps.UpdatePasswordHash(ctx, user, upgraded); err != nil {
					deps.Warn("authsessions: password hash upgrade update failed")
				}
			} else {
				deps.Warn("authsessions: password hash upgrade generation failed")
			}
		}
	}
	password = ""

	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, username, ip); err != nil {
			deps.Warn("authsessions: login rate reset failed")
		}
	}

	access, err := deps.IssueAccessToken(user.Username, user.Email)
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, user.Username, user.Email, ip, err, nil)
		return nil, errors.Join(deps.Errors.SessionCreationFailed, err)
	}

	refresh := deps.NewRefreshToken()
	rec := &session.Record{
		Username:     user.Username,
		Email:        user.Email,
		RefreshToken: refresh,
	}
	if err := deps.Store.Rotate(ctx, user.RefreshToken, rec, ip, deps.SessionTTL); err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, user.Username, user.Email, ip, err, nil)
		return nil, errors.Join(deps.Errors.SessionCreationFailed, err)
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.MetricInc(deps.Metrics.SessionRotated)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, user.Username, user.Email, ip, nil, nil)

	if deps.PublishLoginNotice != nil {
		if err := deps.PublishLoginNotice(ctx, user.Username, user.Email, ip); err != nil {
			deps.Warn("authsessions: login notice publish failed")
		}
	}

	return &LoginResult{AccessToken: access, RefreshToken: refresh}, nil
}
