package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/Antony-QP/React-Ecommerce-Backend/pkg/errors"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/logger"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/validator"
)

// Response is the JSON envelope for every reply: data on success, error
// otherwise.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the structured error body.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON encodes v with the given status. Encoding errors are dropped
// because the header has already been sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes data inside the envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Data: data})
}

// WriteError maps err onto a status and error body. Field-level validation
// failures become 400 VALIDATION_ERROR; 5xx responses are logged with the
// request-scoped logger, falling back to fallback when none is mounted.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	requestID := logger.CorrelationIDFromContext(r.Context())

	var fr validator.FieldReporter
	if errors.As(err, &fr) {
		writeFields(w, fr.Fields(), requestID)
		return
	}

	status := apperrors.HTTPStatus(err)
	body := &ErrorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred", RequestID: requestID}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		body.Code, body.Message = appErr.Code, appErr.Message
	case errors.Is(err, apperrors.ErrNotFound):
		body.Code, body.Message = "NOT_FOUND", "resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		body.Code, body.Message = "ALREADY_EXISTS", "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput):
		body.Code, body.Message = "INVALID_INPUT", err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		body.Code, body.Message = "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		body.Code, body.Message = "FORBIDDEN", "forbidden"
	}

	if status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
		)
	}

	WriteJSON(w, status, Response{Error: body})
}

// WriteValidationError writes a 400. Errors that carry field detail are
// reported as VALIDATION_ERROR with a fields map, anything else (for example
// malformed JSON) as INVALID_INPUT.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := logger.CorrelationIDFromContext(r.Context())

	var fr validator.FieldReporter
	if errors.As(err, &fr) {
		writeFields(w, fr.Fields(), requestID)
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error(), RequestID: requestID},
	})
}

func writeFields(w http.ResponseWriter, fields map[string]string, requestID string) {
	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{
			Code:      "VALIDATION_ERROR",
			Message:   "request validation failed",
			Fields:    fields,
			RequestID: requestID,
		},
	})
}
