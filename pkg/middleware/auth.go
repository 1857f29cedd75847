package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/httputil"
)

type identityKeyType struct{}

var identityKey identityKeyType

// Claims is the verified identity behind a bearer token. Email is always
// set; UserID and Role are filled either by the token itself or later, once
// the caller has been resolved against the user directory.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
}

// TokenValidator verifies a raw bearer token. A refused token is reported
// with an error matching apperrors.ErrUnauthorized; any other error means the
// token could not be checked.
type TokenValidator func(ctx context.Context, token string) (*Claims, error)

// Auth rejects requests without a valid bearer token with 401 and stores the
// verified claims in the request context. When the validator cannot reach a
// verdict the request gets 503.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.WriteError(w, r, apperrors.Unauthorized("missing or malformed authorization header"), nil)
				return
			}

			claims, err := validate(r.Context(), token)
			if err != nil && !tokenRefused(err) {
				httputil.WriteError(w, r, apperrors.Unavailable("token verification unavailable", err), nil)
				return
			}
			if err != nil || claims == nil || claims.Email == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired token"), nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), *claims)))
		})
	}
}

func tokenRefused(err error) bool {
	return errors.Is(err, apperrors.ErrUnauthorized) ||
		errors.Is(err, apperrors.ErrForbidden) ||
		errors.Is(err, apperrors.ErrInvalidInput)
}

// RequireRole answers 403 unless the caller's role is one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[RoleFromContext(r.Context())]; !ok {
				httputil.WriteError(w, r, apperrors.Forbidden("insufficient permissions"), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithClaims stores claims in ctx, replacing any earlier identity.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, identityKey, c)
}

// ClaimsFromContext returns the identity stored by Auth or WithClaims.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(identityKey).(Claims)
	return c, ok
}

func UserIDFromContext(ctx context.Context) string {
	c, _ := ClaimsFromContext(ctx)
	return c.UserID
}

func EmailFromContext(ctx context.Context) string {
	c, _ := ClaimsFromContext(ctx)
	return c.Email
}

func RoleFromContext(ctx context.Context) string {
	c, _ := ClaimsFromContext(ctx)
	return c.Role
}
