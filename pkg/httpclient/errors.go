package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
)

type downstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response and converts it
// into an AppError. Bodies in the standard error envelope keep their code
// and message; anything else is reported with the raw body.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", upstream, resp.StatusCode, err)
	}

	message := string(raw)
	code := ""
	var env downstreamError
	if json.Unmarshal(raw, &env) == nil && env.Error != nil {
		code, message = env.Error.Code, env.Error.Message
	}
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return apperrors.NotFound(upstream, message)
	case http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case http.StatusConflict:
		return apperrors.Conflict(qualified)
	case http.StatusGone:
		return apperrors.Gone(qualified)
	case http.StatusServiceUnavailable:
		return apperrors.Unavailable(qualified, nil)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s server error (%d/%s): %s", upstream, resp.StatusCode, code, message)
	}
	return &apperrors.AppError{Code: code, Message: qualified, Status: resp.StatusCode}
}
