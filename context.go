package authsessions

import "context"

type clientIPContextKey struct{}
type callerContextKey struct{}

type callerIdentity struct {
	username string
	email    string
}

// unknownIP is used when the routing layer supplied no client address, so
// markers still get a stable key.
const unknownIP = "unknown"

// WithClientIP attaches the caller's IP address to ctx. The Engine uses it
// for the logged-session marker key, per-IP rate limiting, and audit logging.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithCaller attaches the authenticated caller's identity to ctx. Logout,
// MassLogout, and ChangePassword resolve the acting user from it; when it is
// absent those operations report false or ErrIdentityRequired instead of
// guessing.
func WithCaller(ctx context.Context, username, email string) context.Context {
	return context.WithValue(ctx, callerContextKey{}, callerIdentity{
		username: username,
		email:    email,
	})
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return unknownIP
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	if ip == "" {
		return unknownIP
	}

	return ip
}

func callerFromContext(ctx context.Context) (callerIdentity, bool) {
	if ctx == nil {
		return callerIdentity{}, false
	}

	caller, ok := ctx.Value(callerContextKey{}).(callerIdentity)
	if !ok || caller.email == "" {
		return callerIdentity{}, false
	}

	return caller, true
}
