package authsessions

import (
	"context"
	"errors"

	"github.com/joaofns/authsessions/internal/flows"
	"github.com/joaofns/authsessions/userdir"
)

// CreateAccount describes the createaccount operation and its observable behavior.
//
// CreateAccount may return an error when input validation, dependency calls, or security checks fail.
// CreateAccount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CreateAccount(ctx context.Context, username, email, pass string) error {
	if e == nil || !e.config.Account.Enabled {
		return ErrEngineNotReady
	}
	return flows.RunCreateAccount(ctx, username, email, pass, e.accountDeps())
}

// ChangePassword describes the changepassword operation and its observable behavior.
//
// ChangePassword may return an error when input validation, dependency calls, or security checks fail.
// ChangePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
// The acting user is resolved from the caller identity on ctx; without one it
// returns ErrIdentityRequired. After a successful change every cached session
// of the caller's email+IP pair is revoked.
func (e *Engine) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if e == nil || !e.config.Account.Enabled {
		return ErrEngineNotReady
	}
	return flows.RunChangePassword(ctx, oldPassword, newPassword, e.accountDeps())
}

func (e *Engine) accountDeps() flows.AccountDeps {
	deps := flows.AccountDeps{
		ClientIPFromContext: clientIPFromContext,
		CallerFromContext:   flowCaller,

		Directory: directoryOps(e.directory),

		HashPassword:   e.passwordHash.Hash,
		VerifyPassword: e.passwordHash.Verify,

		RevokeSessions: e.sessionStore.MassRevoke,

		MetricInc: e.metricIncRaw,
		EmitAudit: e.emitAudit,
		Warn:      engineWarn,

		Metrics: flows.AccountMetrics{
			AccountCreated:              int(MetricAccountCreationSuccess),
			AccountDuplicate:            int(MetricAccountCreationDuplicate),
			PasswordChanged:             int(MetricPasswordChangeSuccess),
			PasswordChangeInvalidOld:    int(MetricPasswordChangeInvalidOld),
			PasswordChangeReuseRejected: int(MetricPasswordChangeReuseRejected),
		},
		Events: flows.AccountEvents{
			AccountCreated:   auditEventAccountCreated,
			AccountDuplicate: auditEventAccountDuplicate,
			PasswordChanged:  auditEventPasswordChanged,
		},
		Errors: flows.AccountErrors{
			EngineNotReady:     ErrEngineNotReady,
			ValidationFailure:  ErrValidationFailure,
			AccountExists:      ErrAccountExists,
			UserNotFound:       ErrUserNotFound,
			InvalidCredentials: ErrInvalidCredentials,
			IdentityRequired:   ErrIdentityRequired,
			PasswordReuse:      ErrPasswordReuse,
			TransactionFailed:  ErrTransactionFailed,
		},
	}

	if e.rateLimiter != nil && e.config.RateLimit.EnableLoginThrottle {
		deps.ResetLoginRate = e.rateLimiter.ResetLogin
	}
	if e.unitOfWork != nil {
		deps.InUnitOfWork = func(ctx context.Context, fn func(ctx context.Context, ops flows.DirectoryOps) error) error {
			return e.unitOfWork.Do(ctx, func(ctx context.Context, dir userdir.Directory) error {
				return fn(ctx, directoryOps(dir))
			})
		}
	}

	return deps
}

// directoryOps binds a credential directory to the flow-level operation
// surface, mapping the directory's not-found sentinel to the engine's.
func directoryOps(dir userdir.Directory) flows.DirectoryOps {
	return flows.DirectoryOps{
		FindByUsername: func(ctx context.Context, username string) (flows.CredentialRecord, error) {
			cred, err := dir.FindByUsername(ctx, username)
			if err != nil {
				if errors.Is(err, userdir.ErrNotFound) {
					return flows.CredentialRecord{}, ErrUserNotFound
				}
				return flows.CredentialRecord{}, err
			}
			return credentialToRecord(cred), nil
		},
		Create: func(ctx context.Context, rec flows.CredentialRecord) error {
			return dir.Create(ctx, recordToCredential(rec))
		},
		Save: func(ctx context.Context, rec flows.CredentialRecord) error {
			return dir.Save(ctx, recordToCredential(rec))
		},
	}
}
