package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/httpclient"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/middleware"
)

type introspectionRequest struct {
	Token string `json:"token"`
}

type introspectionResponse struct {
	Active bool   `json:"active"`
	Sub    string `json:"sub"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Introspector asks a remote identity provider whether a token is active.
type Introspector struct {
	client *httpclient.CircuitBreakerClient
	url    string
}

func NewIntrospector(client *httpclient.CircuitBreakerClient, url string) *Introspector {
	return &Introspector{client: client, url: url}
}

// Validate satisfies middleware.TokenValidator. Inactive tokens and tokens
// without an email are rejected.
func (i *Introspector) Validate(ctx context.Context, token string) (*middleware.Claims, error) {
	body, err := json.Marshal(introspectionRequest{Token: token})
	if err != nil {
		return nil, fmt.Errorf("encode introspection request: %w", err)
	}

	resp, err := i.client.Post(ctx, i.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("introspect token: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "identity provider")
	}
	defer func() { _ = resp.Body.Close() }()

	var out introspectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode introspection response: %w", err)
	}
	if !out.Active {
		return nil, fmt.Errorf("%w: token is not active", apperrors.ErrUnauthorized)
	}
	if out.Email == "" {
		return nil, fmt.Errorf("%w: introspection response carries no email", apperrors.ErrUnauthorized)
	}
	return &middleware.Claims{UserID: out.Sub, Email: out.Email, Role: out.Role}, nil
}
