// Package auth verifies bearer tokens for the catalog API.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/middleware"
)

// Claims is the access-token payload issued by the identity service.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 access tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier returns a verifier for secret. A non-empty issuer must
// match the token's iss claim.
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

// Validate satisfies middleware.TokenValidator.
func (v *JWTVerifier) Validate(_ context.Context, token string) (*middleware.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse access token: %w", apperrors.ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid access token claims", apperrors.ErrUnauthorized)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: access token carries no email", apperrors.ErrUnauthorized)
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	return &middleware.Claims{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}
