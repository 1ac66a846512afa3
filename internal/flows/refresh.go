package flows

import (
	"context"
	"errors"
	"time"

	"github.com/joaofns/authsessions/session"
)

// RefreshMetrics carries metric IDs needed by the refresh flow.
type RefreshMetrics struct {
	RefreshSuccess     int
	RefreshFailure     int
	RefreshRateLimited int
	SessionRotated     int
}

// RefreshEvents carries audit event names used by the refresh flow.
type RefreshEvents struct {
	RefreshSuccess     string
	RefreshFailure     string
	RefreshRateLimited string
}

// RefreshErrors carries host-level sentinel errors used by the refresh flow.
type RefreshErrors struct {
	EngineNotReady        error
	RefreshInvalid        error
	RefreshRateLimited    error
	SessionCreationFailed error
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	SessionTTL time.Duration

	ClientIPFromContext func(context.Context) string

	CheckRefreshRate func(ctx context.Context, token string) error

	// GetSession reports found=false for absent or undecodable records;
	// infrastructure failures come back as err.
	GetSession func(ctx context.Context, token string) (rec *session.Record, found bool, err error)

	IssueAccessToken func(username, email string) (string, error)
	NewRefreshToken  func() string
	Store            SessionStore

	MetricInc func(int)
	EmitAudit AuditEmit

	Metrics RefreshMetrics
	Events  RefreshEvents
	Errors  RefreshErrors
}

// RunRefresh rotates a refresh token: the presented token's record is looked
// up, a new access+refresh pair is minted, and the cache entries are
// rewritten in one pipeline. An absent or corrupt record fails closed to the
// generic refresh-invalid error. Two concurrent rotations of the same stale
// token may both succeed; at-least-once rotation is accepted.
func RunRefresh(ctx context.Context, oldToken string, deps RefreshDeps) (*LoginResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.GetSession == nil ||
		deps.IssueAccessToken == nil ||
		deps.NewRefreshToken == nil ||
		deps.Store == nil {
		return nil, deps.Errors.EngineNotReady
	}

	ip := deps.ClientIPFromContext(ctx)

	if deps.CheckRefreshRate != nil {
		if err := deps.CheckRefreshRate(ctx, oldToken); err != nil {
			deps.MetricInc(deps.Metrics.RefreshRateLimited)
			deps.EmitAudit(ctx, deps.Events.RefreshRateLimited, false, "", "", ip, deps.Errors.RefreshRateLimited, nil)
			return nil, deps.Errors.RefreshRateLimited
		}
	}

	rec, found, err := deps.GetSession(ctx, oldToken)
	if err != nil {
		return nil, err
	}
	if !found {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.EmitAudit(ctx, deps.Events.RefreshFailure, false, "", "", ip, deps.Errors.RefreshInvalid, func() map[string]string {
			return map[string]string{"reason": "token_not_found"}
		})
		return nil, deps.Errors.RefreshInvalid
	}

	access, err := deps.IssueAccessToken(rec.Username, rec.Email)
	if err != nil {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.EmitAudit(ctx, deps.Events.RefreshFailure, false, rec.Username, rec.Email, ip, err, nil)
		return nil, errors.Join(deps.Errors.SessionCreationFailed, err)
	}

	next := &session.Record{
		Username:     rec.Username,
		Email:        rec.Email,
		RefreshToken: deps.NewRefreshToken(),
	}
	if err := deps.Store.Rotate(ctx, oldToken, next, ip, deps.SessionTTL); err != nil {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.EmitAudit(ctx, deps.Events.RefreshFailure, false, rec.Username, rec.Email, ip, err, nil)
		return nil, errors.Join(deps.Errors.SessionCreationFailed, err)
	}

	deps.MetricInc(deps.Metrics.RefreshSuccess)
	deps.MetricInc(deps.Metrics.SessionRotated)
	deps.EmitAudit(ctx, deps.Events.RefreshSuccess, true, rec.Username, rec.Email, ip, nil, nil)

	return &LoginResult{AccessToken: access, RefreshToken: next.RefreshToken}, nil
}
