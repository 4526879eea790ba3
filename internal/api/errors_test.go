package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chayma544/BookMate-back/internal/api/shared"
	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/service"
	"github.com/chayma544/BookMate-back/internal/service/auth"
	"github.com/chayma544/BookMate-back/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"admin required", service.ErrAdminRequired, http.StatusForbidden},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"book not found", store.ErrBookNotFound, http.StatusNotFound},
		{"request not found", store.ErrRequestNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"pending duplicate", store.ErrPendingRequestExists, http.StatusConflict},
		{"book unavailable", service.ErrBookUnavailable, http.StatusConflict},
		{"already decided", domain.ErrRequestAlreadyDecided, http.StatusConflict},
		{"bad transition", domain.ErrInvalidStatusTransition, http.StatusConflict},
		{"own book", domain.ErrOwnBookRequest, http.StatusBadRequest},
		{"cancel after decision", domain.ErrRequestNotPending, http.StatusBadRequest},
		{"bad request type", domain.ErrInvalidRequestType, http.StatusBadRequest},
		{"empty update", service.ErrEmptyUpdate, http.StatusBadRequest},
		{"empty title", domain.ErrEmptyBookTitle, http.StatusBadRequest},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestMapErrorToStatusCodeWrapped(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("deciding request: %w", domain.ErrRequestAlreadyDecided)
	assert.Equal(t, http.StatusConflict, MapErrorToStatusCode(wrapped))

	svcErr := service.NewServiceError("request", "decide", "decision failed", store.ErrRequestNotFound)
	assert.Equal(t, http.StatusNotFound, MapErrorToStatusCode(svcErr))
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", GetSafeErrorMessage(nil))
	assert.Equal(t, "book is not available", GetSafeErrorMessage(service.ErrBookUnavailable))

	internal := errors.New("pq: connection refused to 10.0.0.5:5432")
	got := GetSafeErrorMessage(internal)
	assert.Equal(t, "An unexpected error occurred", got)
	assert.NotContains(t, got, "10.0.0.5")
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", SanitizeValidationError(nil))
	assert.Equal(t, "Invalid request", SanitizeValidationError(errors.New("boom")))

	type loginShape struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
	}
	err := shared.ValidateRequest(loginShape{Email: "not-an-email", Password: "x"})
	msg := SanitizeValidationError(err)
	assert.Contains(t, msg, "email: must be a valid email address")
	assert.Contains(t, msg, "password: must be at least 8 characters")
	assert.NotContains(t, msg, "not-an-email")
}
