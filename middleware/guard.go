package middleware

import (
	"context"
	"net/http"
	"strings"

	authsessions "github.com/joaofns/authsessions"
	"github.com/joaofns/authsessions/jwt"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified access claims injected by [Guard].
func ClaimsFromContext(ctx context.Context) (*jwt.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.AccessClaims)
	return claims, ok
}

// Guard verifies the request's bearer token and forwards with the caller
// identity attached to the context. Requests without a valid token are
// rejected with 401.
func Guard(engine *authsessions.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := engine.ParseToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			ctx = authsessions.WithCaller(ctx, claims.Subject, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP attaches the request's remote address to the context so the engine
// can key logged-session markers and per-IP throttles. A trusted proxy header
// takes precedence when named.
func ClientIP(proxyHeader string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if idx := strings.LastIndex(ip, ":"); idx >= 0 {
				ip = ip[:idx]
			}
			if proxyHeader != "" {
				if forwarded := r.Header.Get(proxyHeader); forwarded != "" {
					ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
				}
			}

			next.ServeHTTP(w, r.WithContext(authsessions.WithClientIP(r.Context(), ip)))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
