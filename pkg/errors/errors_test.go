package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "boom", Err: fmt.Errorf("socket closed")}
	assert.Equal(t, "INTERNAL_ERROR: boom: socket closed", withCause.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "product missing"}
	assert.Equal(t, "NOT_FOUND: product missing", bare.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("product", "red-shoe"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"exists", AlreadyExists("product", "slug", "red-shoe"), "ALREADY_EXISTS", http.StatusConflict, ErrAlreadyExists},
		{"invalid", InvalidInput("bad"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("no token"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("admin only"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"conflict", Conflict("busy"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"gone", Gone("removed"), "GONE", http.StatusGone, ErrGone},
		{"unavailable", Unavailable("store down", errors.New("dial")), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	assert.Equal(t, `user "a@b.c" not found`, NotFound("user", "a@b.c").Message)
}

func TestInternal_KeepsCause(t *testing.T) {
	cause := errors.New("cursor exhausted")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "an internal error occurred", err.Message)
}

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("get: %w", ErrNotFound)))
	assert.Equal(t, http.StatusConflict, HTTPStatus(fmt.Errorf("put: %w", ErrConflict)))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(fmt.Errorf("x: %w", ErrForbidden)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestHTTPStatus_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("service: %w", NotFound("category", "shoes"))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}
