package flows

import (
	"context"
	"errors"
)

// LogoutMetrics carries metric IDs needed by the logout flows.
type LogoutMetrics struct {
	Logout         int
	MassLogout     int
	SessionRevoked int
}

// LogoutEvents carries audit event names used by the logout flows.
type LogoutEvents struct {
	Logout     string
	MassLogout string
}

// LogoutErrors carries host-level sentinel errors used by the logout flows.
type LogoutErrors struct {
	EngineNotReady            error
	SessionInvalidationFailed error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	ClientIPFromContext func(context.Context) string
	CallerFromContext   func(context.Context) (Caller, bool)

	Store SessionStore

	MetricInc func(int)
	EmitAudit AuditEmit

	Metrics LogoutMetrics
	Events  LogoutEvents
	Errors  LogoutErrors
}

// RunLogout removes the presented refresh token's record and the caller's
// logged-session marker. When no caller identity is resolvable it reports
// false without touching the cache; that is a routing-layer condition, not an
// error.
func RunLogout(ctx context.Context, refreshToken string, deps LogoutDeps) (bool, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.CallerFromContext == nil || deps.Store == nil {
		return false, deps.Errors.EngineNotReady
	}

	caller, ok := deps.CallerFromContext(ctx)
	if !ok {
		return false, nil
	}

	ip := deps.ClientIPFromContext(ctx)
	if err := deps.Store.DeleteSession(ctx, refreshToken, caller.Email, ip); err != nil {
		deps.EmitAudit(ctx, deps.Events.Logout, false, caller.Username, caller.Email, ip, err, nil)
		return false, errors.Join(deps.Errors.SessionInvalidationFailed, err)
	}

	deps.MetricInc(deps.Metrics.Logout)
	deps.MetricInc(deps.Metrics.SessionRevoked)
	deps.EmitAudit(ctx, deps.Events.Logout, true, caller.Username, caller.Email, ip, nil, nil)
	return true, nil
}

// RunMassLogout revokes every session of the caller's email+IP pair. When no
// caller identity is resolvable it reports false without touching the cache.
func RunMassLogout(ctx context.Context, deps LogoutDeps) (bool, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.CallerFromContext == nil || deps.Store == nil {
		return false, deps.Errors.EngineNotReady
	}

	caller, ok := deps.CallerFromContext(ctx)
	if !ok {
		return false, nil
	}

	ip := deps.ClientIPFromContext(ctx)
	if err := deps.Store.MassRevoke(ctx, caller.Email, ip); err != nil {
		deps.EmitAudit(ctx, deps.Events.MassLogout, false, caller.Username, caller.Email, ip, err, nil)
		return false, errors.Join(deps.Errors.SessionInvalidationFailed, err)
	}

	deps.MetricInc(deps.Metrics.MassLogout)
	deps.MetricInc(deps.Metrics.SessionRevoked)
	deps.EmitAudit(ctx, deps.Events.MassLogout, true, caller.Username, caller.Email, ip, nil, nil)
	return true, nil
}
