package http

import (
	"fmt"
	"net/http"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/repository"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/httputil"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/middleware"
)

// ContentTypeJSON sets the Content-Type header to application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// ResolveUser looks the authenticated email up in the user directory and
// replaces the token's user id and role with the stored ones. Mount it
// after middleware.Auth.
func ResolveUser(users repository.UserDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := middleware.ClaimsFromContext(r.Context())

			user, err := users.GetByEmail(r.Context(), claims.Email)
			if err != nil {
				httputil.WriteError(w, r, fmt.Errorf("resolve user: %w", err), nil)
				return
			}

			claims.UserID = user.ID
			claims.Role = user.Role
			next.ServeHTTP(w, r.WithContext(middleware.WithClaims(r.Context(), claims)))
		})
	}
}
