package errs

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Request & Input-Validation Errors
var (
	ErrValidation          = errors.New("validation failed")
	ErrMalformedPayload    = errors.New("malformed payload")
	ErrInvalidJSON         = errors.New("invalid JSON")
	ErrMaxBodySizeExceeded = errors.New("max body size exceeded")
)

// Authentication Errors
var (
	ErrMissingToken = errors.New("missing access token")
	ErrInvalidToken = errors.New("invalid access token")
)

// NewValidationError reports every failing field at once. fields maps a field
// name to the reason it was rejected.
func NewValidationError(fields map[string]string) *ApiErr {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	e := &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Details:    "invalid fields: " + strings.Join(names, ", "),
		Fields:     fields,
	}
	if len(names) == 1 {
		e.Field = names[0]
	}
	return e
}

func NewInvalidFieldError(fieldName string, reason string) *ApiErr {
	return NewValidationError(map[string]string{fieldName: reason})
}

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("%w: %w", ErrValidation, ErrMalformedPayload),
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

func NewInvalidJSONError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("%w: %w", ErrValidation, ErrInvalidJSON),
		Details:    "Invalid JSON format",
		Cause:      cause,
		Field:      "json",
	}
}

func NewMaxBodySizeExceededError(maxSize int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrMaxBodySizeExceeded,
		Details:    fmt.Sprintf("Request body size exceeded maximum allowed size of %d bytes", maxSize),
		Field:      "body_size",
	}
}

func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken),
		Details:    "Missing access token",
		Field:      "authorization",
	}
}

func NewInvalidTokenError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidToken),
		Details:    "Invalid access token",
		Field:      "authorization",
		Cause:      cause,
	}
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsInvalidJSONError(err error) bool {
	return errors.Is(err, ErrInvalidJSON)
}
