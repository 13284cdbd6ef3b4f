package utils

import (
	"errors"
	"net/http"
)

// AppError carries the HTTP status and the user-facing message for a failure.
// Err keeps the underlying cause for logs and errors.Is checks.
type AppError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message}
}

// NewBadGatewayError reports a failure of an upstream dependency such as the model provider.
func NewBadGatewayError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusBadGateway, Message: message, Err: err}
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// StatusAndMessage resolves the response status and message for any error.
// Errors that are not AppErrors are reported as a generic internal error.
func StatusAndMessage(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, appErr.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}
