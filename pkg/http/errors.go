package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AppError is an error with an HTTP status and a stable machine code.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

var statusCodes = map[int]string{
	http.StatusBadRequest:          "ERR_BAD_REQUEST",
	http.StatusUnauthorized:        "ERR_UNAUTHORIZED",
	http.StatusForbidden:           "ERR_FORBIDDEN",
	http.StatusNotFound:            "ERR_NOT_FOUND",
	http.StatusMethodNotAllowed:    "ERR_METHOD_NOT_ALLOWED",
	http.StatusConflict:            "ERR_CONFLICT",
	http.StatusTooManyRequests:     "ERR_RATE_LIMITED",
	http.StatusInternalServerError: "ERR_INTERNAL",
	http.StatusServiceUnavailable:  "ERR_UNAVAILABLE",
}

// NewStatusError creates an AppError whose code is derived from status.
func NewStatusError(status int, message string) *AppError {
	code, ok := statusCodes[status]
	if !ok {
		code = fmt.Sprintf("ERR_HTTP_%d", status)
	}
	return &AppError{Code: code, Message: message, Status: status}
}

// WithCode replaces the derived code with a more specific one.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithField names the request field at fault.
func (e *AppError) WithField(field string) *AppError {
	e.Field = field
	return e
}

func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError keeps the cause for logging. It is never rendered.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func NotFoundError(message string) *AppError {
	return NewStatusError(http.StatusNotFound, message)
}

func BadRequestError(message string) *AppError {
	return NewStatusError(http.StatusBadRequest, message)
}

func UnauthorizedError(message string) *AppError {
	return NewStatusError(http.StatusUnauthorized, message)
}

func InternalError(message string) *AppError {
	return NewStatusError(http.StatusInternalServerError, message)
}

func ConflictError(message string) *AppError {
	return NewStatusError(http.StatusConflict, message)
}

func TooManyRequestsError(message string) *AppError {
	return NewStatusError(http.StatusTooManyRequests, message)
}

func UnavailableError(message string) *AppError {
	return NewStatusError(http.StatusServiceUnavailable, message)
}

// asAppError converts router errors (unknown route, bad method) and stray
// errors into an AppError so every failure uses the same envelope.
func asAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return NewStatusError(he.Code, http.StatusText(he.Code)).WithError(err)
	}
	return InternalError("something went wrong").WithError(err)
}
