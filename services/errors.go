package services

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Error categories. Every error returned by this package matches exactly one
// of them with errors.Is.
var (
	ErrValidation      = errors.New("validation")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrStorage         = errors.New("storage")
)

var (
	ErrNoCredential      = NewError(ErrUnauthenticated, "no credential")
	ErrInvalidCredential = NewError(ErrUnauthenticated, "invalid or expired token")
	ErrNotOwner          = NewError(ErrForbidden, "not the owner of this resource")
	ErrParentNotFound    = NewError(ErrValidation, "parent comment not found on this target")
	ErrMaxDepthExceeded  = NewError(ErrValidation, "comment nesting too deep")
	ErrEmptyContent      = NewError(ErrValidation, "content is required")
)

// ServiceError carries a client-safe message and the category it belongs to.
type ServiceError struct {
	Category error
	Message  string
}

func NewError(category error, message string) *ServiceError {
	return &ServiceError{Category: category, Message: message}
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Category
}

// storageError hides err behind the storage category. The cause stays in the
// chain for server-side logging only.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// classifyStorageError maps constraint violations reported by postgres to
// their domain category and falls back to a storage error.
func classifyStorageError(op string, err error, notFound, conflict *ServiceError) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503":
			if notFound != nil {
				return notFound
			}
		case "23505":
			if conflict != nil {
				return conflict
			}
		}
	}
	return storageError(op, err)
}
