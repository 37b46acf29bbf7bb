// Package respond writes the JSON response envelope
//
//	{ "success": bool, "message": string, "data": any, "error"?: any, "pagination"?: {...} }
//
// and maps domain errors onto HTTP status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"tlwd-backend/internal/common/pagination"
	"tlwd-backend/internal/domain/entity"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Data       any                  `json:"data"`
	Error      any                  `json:"error,omitempty"`
	Pagination *pagination.Metadata `json:"pagination,omitempty"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Log the error but cannot send error response as headers already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Paginated writes a 200 success envelope carrying pagination metadata.
func Paginated(w http.ResponseWriter, message string, data any, meta pagination.Metadata) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: &meta})
}

// Error writes a failure envelope with an explicit status and message.
func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, Envelope{Success: false, Message: message})
}

// AppError is an error type that carries a user-facing message.
type AppError struct {
	UserMsg string // Message to display to users
	Err     error  // Internal error (logged for debugging)
	Code    int    // HTTP status code
}

// Error returns the error message, implementing the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the underlying error, implementing the errors.Unwrap interface.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given parameters.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// Status returns the HTTP status for err:
//
//	*AppError            → its Code
//	ValidationError      → 400
//	NotFound             → 404
//	Conflict             → 400
//	anything else        → 500
func Status(err error) int {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Code
	case errors.Is(err, entity.ErrValidationFailed), errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text for err. Domain errors carry their
// own wording; anything else is the sanitized underlying message.
func Message(err error) string {
	var (
		appErr   *AppError
		ve       *entity.ValidationError
		nf       *entity.NotFoundError
		conflict *entity.ConflictError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr.UserMsg
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &nf):
		return nf.Error()
	case errors.As(err, &conflict):
		return conflict.Message
	default:
		return SanitizeError(err)
	}
}

// Fail writes the failure envelope for err. 5xx errors are logged.
func Fail(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	code := Status(err)
	msg := Message(err)
	env := Envelope{Success: false, Message: msg}

	if code >= http.StatusInternalServerError {
		slog.Default().Error("internal server error",
			slog.String("status", http.StatusText(code)),
			slog.Int("code", code),
			slog.Any("error", SanitizeError(err)))
		if msg == "" {
			env.Message = "Server error"
		}
		env.Error = SanitizeError(err)
	} else {
		var ve *entity.ValidationError
		if errors.As(err, &ve) && ve.Field != "" {
			env.Error = map[string]string{"field": ve.Field}
		}
	}
	JSON(w, code, env)
}

// Attachment sends data as a file download.
func Attachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Default().Warn("failed to write attachment",
			slog.String("filename", filename),
			slog.Any("error", err))
	}
}
