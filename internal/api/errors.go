// Package api implements the HTTP layer: handlers, request/response models,
// and the mapping from domain and service errors to HTTP status codes.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/service"
	"github.com/chayma544/BookMate-back/internal/service/auth"
	"github.com/chayma544/BookMate-back/internal/store"
)

// MapErrorToStatusCode translates errors from the service and store layers
// into HTTP status codes. Anything unrecognized is treated as an internal
// error so unexpected failures never leak details with a 4xx.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Authentication failures.
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Authorization failures.
	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, service.ErrAdminRequired):
		return http.StatusForbidden

	// Missing entities. ErrNotFound covers the wrapped user/book/request
	// variants.
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflicts with current state.
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrBookUnavailable),
		errors.Is(err, domain.ErrRequestAlreadyDecided),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusConflict

	// Malformed or semantically invalid input.
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrEmptyUpdate),
		errors.Is(err, domain.ErrOwnBookRequest),
		errors.Is(err, domain.ErrRequestNotPending),
		errors.Is(err, domain.ErrInvalidRequestType),
		errors.Is(err, domain.ErrInvalidRequestStatus),
		isDomainValidationError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a message suitable for clients. For statuses we
// map deliberately the sentinel text is already safe; internal errors get a
// generic message instead of the raw error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if MapErrorToStatusCode(err) == http.StatusInternalServerError {
		return "An unexpected error occurred"
	}
	return err.Error()
}

// isDomainValidationError reports whether err is one of the field-level
// validation sentinels produced by the domain constructors.
func isDomainValidationError(err error) bool {
	validationErrors := []error{
		domain.ErrEmptyEmail,
		domain.ErrInvalidEmail,
		domain.ErrEmptyPassword,
		domain.ErrPasswordTooShort,
		domain.ErrPasswordTooLong,
		domain.ErrEmptyFirstName,
		domain.ErrEmptyLastName,
		domain.ErrInvalidUserRole,
		domain.ErrEmptyBookTitle,
		domain.ErrEmptyBookAuthor,
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// SanitizeValidationError converts validator errors into user-facing field
// messages without echoing submitted values back.
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), validationTagMessage(fe)))
	}
	return strings.Join(messages, "; ")
}

func validationTagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "is invalid"
	}
}
