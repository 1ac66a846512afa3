package flows

import (
	"context"
	"errors"
)

// DirectoryOps is the credential-directory surface consumed by account flows.
// Inside a unit of work the same operations are bound to the transaction.
type DirectoryOps struct {
	FindByUsername func(ctx context.Context, username string) (CredentialRecord, error)
	Create         func(ctx context.Context, cred CredentialRecord) error
	Save           func(ctx context.Context, cred CredentialRecord) error
}

// AccountMetrics carries metric IDs needed by account flows.
type AccountMetrics struct {
	AccountCreated              int
	AccountDuplicate            int
	PasswordChanged             int
	PasswordChangeInvalidOld    int
	PasswordChangeReuseRejected int
}

// AccountEvents carries audit event names used by account flows.
type AccountEvents struct {
	AccountCreated   string
	AccountDuplicate string
	PasswordChanged  string
}

// AccountErrors carries host-level sentinel errors used by account flows.
type AccountErrors struct {
	EngineNotReady     error
	ValidationFailure  error
	AccountExists      error
	UserNotFound       error
	InvalidCredentials error
	IdentityRequired   error
	PasswordReuse      error
	TransactionFailed  error
}

// AccountDeps captures account flow dependencies.
type AccountDeps struct {
	ClientIPFromContext func(context.Context) string
	CallerFromContext   func(context.Context) (Caller, bool)

	Directory DirectoryOps

	// InUnitOfWork, when set, runs fn inside one directory transaction with
	// transaction-bound operations. When nil the flow uses Directory directly.
	InUnitOfWork func(ctx context.Context, fn func(ctx context.Context, ops DirectoryOps) error) error

	HashPassword   func(password string) (string, error)
	VerifyPassword func(password, hash string) bool

	ResetLoginRate func(ctx context.Context, username, ip string) error

	// RevokeSessions kills every cached session of the email+IP pair after a
	// password change.
	RevokeSessions func(ctx context.Context, email, ip string) error

	MetricInc func(int)
	EmitAudit AuditEmit
	Warn      func(string, ...any)

	Metrics AccountMetrics
	Events  AccountEvents
	Errors  AccountErrors
}

func (d AccountDeps) inDirectory(ctx context.Context, fn func(ctx context.Context, ops DirectoryOps) error) error {
	if d.InUnitOfWork != nil {
		if err := d.InUnitOfWork(ctx, fn); err != nil {
			if errors.Is(err, d.Errors.AccountExists) ||
				errors.Is(err, d.Errors.UserNotFound) ||
				errors.Is(err, d.Errors.InvalidCredentials) ||
				errors.Is(err, d.Errors.PasswordReuse) {
				return err
			}
			return errors.Join(d.Errors.TransactionFailed, err)
		}
		return nil
	}
	return fn(ctx, d.Directory)
}

// RunCreateAccount registers a new credential. The uniqueness check and the
// insert run inside one unit of work when the directory supports it.
func RunCreateAccount(ctx context.Context, username, email, password string, deps AccountDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.HashPassword == nil || deps.Directory.FindByUsername == nil || deps.Directory.Create == nil {
		return deps.Errors.EngineNotReady
	}

	if username == "" || email == "" || password == "" {
		return deps.Errors.ValidationFailure
	}

	hash, err := deps.HashPassword(password)
	if err != nil {
		return err
	}
	password = ""

	err = deps.inDirectory(ctx, func(ctx context.Context, ops DirectoryOps) error {
		if _, err := ops.FindByUsername(ctx, username); err == nil {
			return deps.Errors.AccountExists
		} else if !errors.Is(err, deps.Errors.UserNotFound) {
			return err
		}

		return ops.Create(ctx, CredentialRecord{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
		})
	})
	if err != nil {
		if errors.Is(err, deps.Errors.AccountExists) {
			deps.MetricInc(deps.Metrics.AccountDuplicate)
			deps.EmitAudit(ctx, deps.Events.AccountDuplicate, false, username, email, deps.ClientIPFromContext(ctx), err, nil)
		}
		return err
	}

	deps.MetricInc(deps.Metrics.AccountCreated)
	deps.EmitAudit(ctx, deps.Events.AccountCreated, true, username, email, deps.ClientIPFromContext(ctx), nil, nil)
	return nil
}

// RunChangePassword verifies the caller's current password, persists the new
// hash inside one unit of work, then revokes the caller's cached sessions so
// refresh tokens stolen under the old password die with it.
func RunChangePassword(ctx context.Context, oldPassword, newPassword string, deps AccountDeps) error {
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
	if deps.CallerFromContext == nil ||
		deps.HashPassword == nil ||
		deps.VerifyPassword == nil ||
		deps.Directory.FindByUsername == nil ||
		deps.Directory.Save == nil {
		return deps.Errors.EngineNotReady
	}

	caller, ok := deps.CallerFromContext(ctx)
	if !ok {
		return deps.Errors.IdentityRequired
	}
	if newPassword == "" {
		return deps.Errors.ValidationFailure
	}

	ip := deps.ClientIPFromContext(ctx)

	err := deps.inDirectory(ctx, func(ctx context.Context, ops DirectoryOps) error {
		cred, err := ops.FindByUsername(ctx, caller.Username)
		if err != nil {
			return err
		}

		if !deps.VerifyPassword(oldPassword, cred.PasswordHash) {
			return deps.Errors.InvalidCredentials
		}
		if deps.VerifyPassword(newPassword, cred.PasswordHash) {
			return deps.Errors.PasswordReuse
		}

		hash, err := deps.HashPassword(newPassword)
		if err != nil {
			return err
		}

		cred.PasswordHash = hash
		cred.RefreshToken = ""
		return ops.Save(ctx, cred)
	})
	if err != nil {
		switch {
		case errors.Is(err, deps.Errors.InvalidCredentials):
			deps.MetricInc(deps.Metrics.PasswordChangeInvalidOld)
		case errors.Is(err, deps.Errors.PasswordReuse):
			deps.MetricInc(deps.Metrics.PasswordChangeReuseRejected)
		}
		deps.EmitAudit(ctx, deps.Events.PasswordChanged, false, caller.Username, caller.Email, ip, err, nil)
		return err
	}
	oldPassword, newPassword = "", ""

	if deps.RevokeSessions != nil {
		if err := deps.RevokeSessions(ctx, caller.Email, ip); err != nil {
			deps.Warn("authsessions: session revocation after password change failed")
		}
	}
	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, caller.Username, ip); err != nil {
			deps.Warn("authsessions: login rate reset failed")
		}
	}

	deps.MetricInc(deps.Metrics.PasswordChanged)
	deps.EmitAudit(ctx, deps.Events.PasswordChanged, true, caller.Username, caller.Email, ip, nil, nil)
	return nil
}
