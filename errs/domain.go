package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Content invariants
var (
	ErrSingletonViolation    = errors.New("singleton violation")
	ErrOperationNotPermitted = errors.New("operation not permitted")
	ErrExternalService       = errors.New("external service failure")
)

// NewSingletonViolation is returned when a second row of a single-row entity is created.
func NewSingletonViolation(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%s %w", entity, ErrSingletonViolation),
		Details:    fmt.Sprintf("only one %s may exist; update the existing row instead", entity),
	}
}

func NewOperationNotPermitted(operation, entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%s %s: %w", operation, entity, ErrOperationNotPermitted),
	}
}

// NewExternalServiceError wraps a failure of a third-party collaborator (email, SMS, media).
func NewExternalServiceError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        fmt.Errorf("%s: %w", service, ErrExternalService),
		Cause:      cause,
	}
}

func IsSingletonViolation(err error) bool {
	return errors.Is(err, ErrSingletonViolation)
}

func IsOperationNotPermitted(err error) bool {
	return errors.Is(err, ErrOperationNotPermitted)
}

func IsExternalServiceError(err error) bool {
	return errors.Is(err, ErrExternalService)
}
