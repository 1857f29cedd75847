package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
)

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestParseResponseError_Envelope(t *testing.T) {
	err := ParseResponseError(response(http.StatusUnauthorized, `{"error":{"code":"UNAUTHORIZED","message":"token revoked"}}`), "identity")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
	assert.Equal(t, "identity: token revoked", appErr.Message)
}

func TestParseResponseError_StatusMapping(t *testing.T) {
	tests := map[int]error{
		http.StatusNotFound:           apperrors.ErrNotFound,
		http.StatusBadRequest:         apperrors.ErrInvalidInput,
		http.StatusForbidden:          apperrors.ErrForbidden,
		http.StatusConflict:           apperrors.ErrConflict,
		http.StatusGone:               apperrors.ErrGone,
		http.StatusServiceUnavailable: apperrors.ErrServiceUnavail,
	}
	for status, sentinel := range tests {
		err := ParseResponseError(response(status, "plain text"), "identity")
		assert.ErrorIs(t, err, sentinel, status)
	}
}

func TestParseResponseError_ServerError(t *testing.T) {
	err := ParseResponseError(response(http.StatusInternalServerError, "stack trace"), "identity")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity server error (500/)")
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
}

func TestParseResponseError_OtherStatusKeepsCode(t *testing.T) {
	err := ParseResponseError(response(http.StatusTooManyRequests, `{"error":{"code":"RATE_LIMITED","message":"slow down"}}`), "identity")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "RATE_LIMITED", appErr.Code)
	assert.Equal(t, http.StatusTooManyRequests, appErr.Status)
}
