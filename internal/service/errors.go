// Package service provides application-level services for managing books,
// requests, and users.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request. API layer maps this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrAdminRequired indicates an operation reserved for administrators.
	// API layer maps this to HTTP 403 Forbidden.
	ErrAdminRequired = errors.New("administrator privileges required")

	// ErrBookUnavailable indicates the book already has an accepted request
	// and cannot take part in a new one. API layer maps this to HTTP 409
	// Conflict.
	ErrBookUnavailable = errors.New("book is not available")

	// ErrEmptyUpdate indicates a sparse update carried no recognized fields.
	// API layer maps this to HTTP 400 Bad Request.
	ErrEmptyUpdate = errors.New("update contains no fields")
)

// ServiceError is a custom error type that ties a failure to the service
// operation it occurred in while preserving the underlying cause for
// errors.Is/errors.As.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
