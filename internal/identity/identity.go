// Package identity resolves bearer credentials into authenticated principals.
package identity

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/ashureev/skill-swap/internal/api"
	"github.com/ashureev/skill-swap/internal/apperr"
)

// QueryTokenParam is the query parameter carrying the credential when a
// client cannot set headers (browser WebSocket handshakes).
const QueryTokenParam = "token"

type contextKey int

const (
	userIDKey contextKey = iota
)

var (
	errMissingToken = apperr.Unauthenticated("authentication required")
	errInvalidToken = apperr.Unauthenticated("invalid token")
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// Verifier checks a bearer credential.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// TokenFromRequest returns the bearer credential from the Authorization
// header, falling back to the token query parameter.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get(QueryTokenParam))
}

// Authenticate verifies the request's credential.
func Authenticate(r *http.Request, v Verifier) (*Principal, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, errMissingToken
	}
	principal, err := v.Verify(r.Context(), token)
	if err != nil {
		return nil, err
	}
	if principal == nil || principal.UserID == "" {
		return nil, errInvalidToken
	}
	return principal, nil
}

// Middleware rejects requests without a valid credential and injects the
// caller's user ID into the request context.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := Authenticate(r, v)
			if err != nil {
				api.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), principal.UserID)))
		})
	}
}

// IPFromRequest returns a normalized remote IP for request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
