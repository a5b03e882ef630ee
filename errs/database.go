package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage failure")
)

// Database & Storage Specific Errors
var (
	ErrUniquenessViolation  = errors.New("uniqueness violation")
	ErrForeignKeyConstraint = errors.New("foreign key constraint violation")
	ErrDatabaseConnection   = errors.New("database connection failed")
)

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewUniquenessViolation reports that value already exists for a unique field of entity.
func NewUniquenessViolation(entity, field, value string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%s %w", entity, ErrUniquenessViolation),
		Details:    fmt.Sprintf("%s %q is already taken", field, value),
		Field:      field,
	}
}

// NewStorageError wraps an unexpected persistence failure. The cause is kept for
// server-side logging only.
func NewStorageError(operation, entity string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorage,
		Details:    fmt.Sprintf("failed to %s %s", operation, entity),
		Cause:      cause,
	}
}

// NewDatabaseError creates a new database error with details about the operation
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	if cause == nil {
		return NewStorageError(operation, entity, nil)
	}

	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	if errors.Is(cause, gorm.ErrRecordNotFound) {
		return NewNotFound(entity)
	}

	if errors.Is(cause, gorm.ErrDuplicatedKey) || isUniqueViolation(cause) {
		return &ApiErr{
			StatusCode: http.StatusConflict,
			err:        fmt.Errorf("%s %w", entity, ErrUniquenessViolation),
			Details:    fmt.Sprintf("failed to %s %s", operation, entity),
			Cause:      cause,
		}
	}

	errStr := strings.ToLower(cause.Error())
	switch {
	case errors.Is(cause, gorm.ErrForeignKeyViolated) || strings.Contains(errStr, "foreign key constraint"):
		return &ApiErr{
			StatusCode: http.StatusBadRequest,
			err:        fmt.Errorf("invalid reference in %s: %w", entity, ErrForeignKeyConstraint),
			Details:    "The referenced resource does not exist or cannot be linked",
			Cause:      cause,
		}
	case strings.Contains(errStr, "connection refused"):
		return &ApiErr{
			StatusCode: http.StatusInternalServerError,
			err:        fmt.Errorf("%w: %w", ErrStorage, ErrDatabaseConnection),
			Details:    "Unable to connect to database",
			Cause:      cause,
		}
	}

	return NewStorageError(operation, entity, cause)
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// IsUniqueViolation reports whether err came from a unique index rejecting a write.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrUniquenessViolation) || errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err)
}

func IsUniquenessViolation(err error) bool {
	return errors.Is(err, ErrUniquenessViolation)
}

func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}
