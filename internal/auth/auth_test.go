package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/httpclient"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		Email: "ada@example.com",
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "64b7f0c2a1b2c3d4e5f60718",
			Issuer:    "user-service",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestJWTVerifier_Valid(t *testing.T) {
	v := NewJWTVerifier(testSecret, "user-service")
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

	claims, err := v.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID, "subject fills a missing user_id")
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier(testSecret, "user-service")

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"

	noEmail := validClaims()
	noEmail.Email = ""

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims())},
		{"wrong algorithm", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims())},
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"no expiry", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"wrong issuer", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer)},
		{"no email", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noEmail)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(context.Background(), tt.token)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		})
	}
}

func newIntrospector(t *testing.T, handler http.HandlerFunc) *Introspector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	client := httpclient.NewCircuitBreakerClient(httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig("identity-test"), logger.Discard())
	return NewIntrospector(client, srv.URL+"/introspect")
}

func TestIntrospector_Active(t *testing.T) {
	i := newIntrospector(t, func(w http.ResponseWriter, r *http.Request) {
		var req introspectionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tok", req.Token)
		_ = json.NewEncoder(w).Encode(introspectionResponse{Active: true, Sub: "u1", Email: "ada@example.com"})
	})

	claims, err := i.Validate(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestIntrospector_Inactive(t *testing.T) {
	i := newIntrospector(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(introspectionResponse{Active: false, Email: "ada@example.com"})
	})
	_, err := i.Validate(context.Background(), "tok")
	assert.ErrorContains(t, err, "not active")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestIntrospector_ProviderFailureIsNotARefusal(t *testing.T) {
	i := newIntrospector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := i.Validate(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestIntrospector_UpstreamRejects(t *testing.T) {
	i := newIntrospector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"revoked"}}`))
	})
	_, err := i.Validate(context.Background(), "tok")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
