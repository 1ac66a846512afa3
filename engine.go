package authsessions

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	internalaudit "github.com/joaofns/authsessions/internal/audit"
	"github.com/joaofns/authsessions/internal/flows"
	internalmetrics "github.com/joaofns/authsessions/internal/metrics"
	"github.com/joaofns/authsessions/jwt"
	"github.com/joaofns/authsessions/notify"
	"github.com/joaofns/authsessions/password"
	"github.com/joaofns/authsessions/session"
	"github.com/joaofns/authsessions/userdir"
)

// Engine defines a public type used by authsessions APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	directory    userdir.Directory
	unitOfWork   userdir.UnitOfWork
	sessionStore *session.Store
	rateLimiter  rateLimiter
	publisher    notify.Publisher
	audit        *internalaudit.Dispatcher
	metrics      *internalmetrics.Metrics
	passwordHash *password.Hasher
	jwtManager   *jwt.Manager
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricIncRaw(id int) {
	e.metricInc(MetricID(id))
}

func (e *Engine) observeNanos(id int, nanos int64) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(MetricID(id), time.Duration(nanos))
}

func engineWarn(msg string, _ ...any) {
	log.Print(msg)
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, username, pass string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	deps := flows.LoginDeps{
		SessionTTL:             e.config.Session.Lifetime,
		PasswordUpgradeOnLogin: e.config.Password.UpgradeOnLogin,

		ClientIPFromContext: clientIPFromContext,

		FindByUsername:     e.findCredential,
		UpdatePasswordHash: e.updatePasswordHash,

		VerifyPassword:       e.passwordHash.Verify,
		PasswordNeedsUpgrade: e.passwordHash.NeedsUpgrade,
		HashPassword:         e.passwordHash.Hash,

		IssueAccessToken: e.issueAccessToken,
		NewRefreshToken:  uuid.NewString,
		Store:            e.sessionStore,

		MetricInc: e.metricIncRaw,
		EmitAudit: e.emitAudit,
		Warn:      engineWarn,

		Metrics: flows.LoginMetrics{
			LoginSuccess:     int(MetricLoginSuccess),
			LoginFailure:     int(MetricLoginFailure),
			LoginRateLimited: int(MetricLoginRateLimited),
			SessionRotated:   int(MetricSessionCreated),
		},
		Events: flows.LoginEvents{
			LoginSuccess:     auditEventLoginSuccess,
			LoginFailure:     auditEventLoginFailure,
			LoginRateLimited: auditEventLoginRateLimited,
		},
		Errors: flows.LoginErrors{
			EngineNotReady:        ErrEngineNotReady,
			InvalidCredentials:    ErrInvalidCredentials,
			LoginRateLimited:      ErrLoginRateLimited,
			UserNotFound:          ErrUserNotFound,
			SessionCreationFailed: ErrSessionCreationFailed,
		},
	}

	if e.rateLimiter != nil && e.config.RateLimit.EnableLoginThrottle {
		deps.CheckLoginRate = e.rateLimiter.CheckLogin
		deps.IncrementLoginRate = e.rateLimiter.IncrementLogin
		deps.ResetLoginRate = e.rateLimiter.ResetLogin
	}
	if e.publisher != nil {
		deps.PublishLoginNotice = e.publishLoginNotice
	}

	return mapLoginResult(flows.RunLogin(ctx, username, pass, deps))
}

// RefreshToken describes the refreshtoken operation and its observable behavior.
//
// RefreshToken may return an error when input validation, dependency calls, or security checks fail.
// RefreshToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RefreshToken(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	deps := flows.RefreshDeps{
		SessionTTL: e.config.Session.Lifetime,

		ClientIPFromContext: clientIPFromContext,

		GetSession: e.getSession,

		IssueAccessToken: e.issueAccessToken,
		NewRefreshToken:  uuid.NewString,
		Store:            e.sessionStore,

		MetricInc: e.metricIncRaw,
		EmitAudit: e.emitAudit,

		Metrics: flows.RefreshMetrics{
			RefreshSuccess:     int(MetricRefreshSuccess),
			RefreshFailure:     int(MetricRefreshFailure),
			RefreshRateLimited: int(MetricRefreshRateLimited),
			SessionRotated:     int(MetricSessionCreated),
		},
		Events: flows.RefreshEvents{
			RefreshSuccess:     auditEventRefreshSuccess,
			RefreshFailure:     auditEventRefreshFailure,
			RefreshRateLimited: auditEventRefreshRateLimited,
		},
		Errors: flows.RefreshErrors{
			EngineNotReady:        ErrEngineNotReady,
			RefreshInvalid:        ErrRefreshInvalid,
			RefreshRateLimited:    ErrRefreshRateLimited,
			SessionCreationFailed: ErrSessionCreationFailed,
		},
	}

	if e.rateLimiter != nil && e.config.RateLimit.EnableRefreshThrottle {
		deps.CheckRefreshRate = e.rateLimiter.CheckRefresh
	}

	return mapLoginResult(flows.RunRefresh(ctx, refreshToken, deps))
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, refreshToken string) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}
	return flows.RunLogout(ctx, refreshToken, e.logoutDeps())
}

// MassLogout describes the masslogout operation and its observable behavior.
//
// MassLogout may return an error when input validation, dependency calls, or security checks fail.
// MassLogout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MassLogout(ctx context.Context) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}
	return flows.RunMassLogout(ctx, e.logoutDeps())
}

func (e *Engine) logoutDeps() flows.LogoutDeps {
	return flows.LogoutDeps{
		ClientIPFromContext: clientIPFromContext,
		CallerFromContext:   flowCaller,

		Store: e.sessionStore,

		MetricInc: e.metricIncRaw,
		EmitAudit: e.emitAudit,

		Metrics: flows.LogoutMetrics{
			Logout:         int(MetricLogout),
			MassLogout:     int(MetricLogoutAll),
			SessionRevoked: int(MetricSessionRevoked),
		},
		Events: flows.LogoutEvents{
			Logout:     auditEventLogoutSession,
			MassLogout: auditEventLogoutAll,
		},
		Errors: flows.LogoutErrors{
			EngineNotReady:            ErrEngineNotReady,
			SessionInvalidationFailed: ErrSessionInvalidationFailed,
		},
	}
}

// ValidateToken describes the validatetoken operation and its observable behavior.
//
// ValidateToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
// Every failure mode, including garbage input, collapses into false.
func (e *Engine) ValidateToken(tokenStr string) bool {
	if e == nil || e.jwtManager == nil {
		return false
	}

	return flows.RunValidate(tokenStr, flows.ValidateDeps{
		Validate: e.jwtManager.Validate,

		MetricInc:    e.metricIncRaw,
		ObserveNanos: e.observeNanos,

		Metrics: flows.ValidateMetrics{
			ValidateSuccess: int(MetricValidateSuccess),
			ValidateFailure: int(MetricValidateFailure),
			ValidateLatency: int(MetricValidateLatency),
		},
	})
}

// ParseToken returns the verified claims carried by an access token.
//
// ParseToken may return an error when input validation, dependency calls, or security checks fail.
// ParseToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ParseToken(tokenStr string) (*jwt.AccessClaims, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	return e.jwtManager.ParseAccess(tokenStr)
}

// Health describes the health operation and its observable behavior.
//
// Health does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil || e.sessionStore == nil {
		return HealthStatus{}
	}

	latency, err := e.sessionStore.Ping(ctx)
	return HealthStatus{
		CacheAvailable: err == nil,
		CacheLatency:   latency,
	}
}

/*
====================================
FLOW ADAPTERS
====================================
*/

// rateLimiter narrows the rate package surface the engine consumes, so tests
// can substitute a failing limiter.
type rateLimiter interface {
	CheckLogin(ctx context.Context, username, ip string) error
	IncrementLogin(ctx context.Context, username, ip string) error
	ResetLogin(ctx context.Context, username, ip string) error
	CheckRefresh(ctx context.Context, token string) error
}

func mapLoginResult(res *flows.LoginResult, err error) (*LoginResult, error) {
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}, nil
}

func flowCaller(ctx context.Context) (flows.Caller, bool) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return flows.Caller{}, false
	}
	return flows.Caller{
		Username: caller.username,
		Email:    caller.email,
	}, true
}

func (e *Engine) findCredential(ctx context.Context, username string) (flows.CredentialRecord, error) {
	cred, err := e.directory.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userdir.ErrNotFound) {
			return flows.CredentialRecord{}, ErrUserNotFound
		}
		return flows.CredentialRecord{}, err
	}
	return credentialToRecord(cred), nil
}

func (e *Engine) updatePasswordHash(ctx context.Context, cred flows.CredentialRecord, newHash string) error {
	cred.PasswordHash = newHash
	return e.directory.Save(ctx, recordToCredential(cred))
}

func (e *Engine) issueAccessToken(username, email string) (string, error) {
	return e.jwtManager.CreateAccess(username, email, e.config.Account.DefaultRole)
}

// getSession reports found=false for both an absent record and an undecodable
// one, so a corrupt blob fails closed to the generic refresh-invalid error.
// Cache transport failures come back as err.
func (e *Engine) getSession(ctx context.Context, token string) (*session.Record, bool, error) {
	rec, err := e.sessionStore.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, session.ErrRecordCorrupt) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return rec, true, nil
}

func (e *Engine) publishLoginNotice(ctx context.Context, username, email, ip string) error {
	payload, err := notify.EncodeLoginNotice(notify.LoginNotice{
		Username: username,
		Email:    email,
		IP:       ip,
	})
	if err != nil {
		e.metricInc(MetricNotifyFailure)
		return err
	}

	if err := e.publisher.Publish(ctx, e.config.Notify.Topic, payload); err != nil {
		e.metricInc(MetricNotifyFailure)
		return err
	}
	return nil
}

func credentialToRecord(cred *userdir.Credential) flows.CredentialRecord {
	return flows.CredentialRecord{
		ID:           cred.ID,
		Username:     cred.Username,
		Email:        cred.Email,
		PasswordHash: cred.PasswordHash,
		RefreshToken: cred.RefreshToken,
	}
}

func recordToCredential(rec flows.CredentialRecord) *userdir.Credential {
	return &userdir.Credential{
		ID:           rec.ID,
		Username:     rec.Username,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		RefreshToken: rec.RefreshToken,
	}
}
