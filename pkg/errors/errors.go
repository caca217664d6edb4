package errors

import "errors"

// Codes shared by the domain services and mapped to HTTP statuses by the transport.
const (
	CodeInvalidInput        = "invalid_input"
	CodeNotFound            = "not_found"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeLLM                 = "llm_error"
	CodeInvalidToken        = "invalid_token"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
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

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// Invalid is shorthand for an invalid_input error without a cause.
func Invalid(message string) error {
	return &AppError{Code: CodeInvalidInput, Message: message}
}

// Upstream marks a failing collaborator such as the record store.
func Upstream(message string, err error) error {
	return Wrap(CodeUpstreamUnavailable, message, err)
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost AppError, or an empty string.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
