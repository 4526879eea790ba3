package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/chayma544/BookMate-back/internal/api/shared"
	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/service/auth"
	"github.com/chayma544/BookMate-back/internal/store"
)

// AuthHandler serves registration, login, and token refresh.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	logger           *slog.Logger
}

// NewAuthHandler creates an AuthHandler with its dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		logger:           logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register. New accounts always start with the
// regular user role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	user, err := domain.NewUser(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithErrorAndLog(w, r, http.StatusConflict, "Email is already registered", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	resp, err := h.tokenPair(r, user)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to issue tokens", err)
		return
	}

	shared.RespondWithJSON(w, http.StatusCreated, resp)
}

// Login handles POST /auth/login. Invalid email and wrong password produce
// the same response so the endpoint cannot be used to probe for accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				"Invalid email or password", auth.ErrInvalidCredentials)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to authenticate", err)
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
			"Invalid email or password", auth.ErrInvalidCredentials)
		return
	}

	resp, err := h.tokenPair(r, user)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to issue tokens", err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /auth/refresh. The user is reloaded so a deleted
// account cannot keep minting tokens, and a role change takes effect here.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid or expired refresh token", err)
		return
	}

	user, err := h.userStore.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				"Invalid or expired refresh token", auth.ErrInvalidToken)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to refresh tokens", err)
		return
	}

	resp, err := h.tokenPair(r, user)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to issue tokens", err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) tokenPair(r *http.Request, user *domain.User) (AuthResponse, error) {
	access, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Role)
	if err != nil {
		return AuthResponse{}, err
	}
	refresh, err := h.jwtService.GenerateRefreshToken(r.Context(), user.ID, user.Role)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         NewUserResponse(user),
	}, nil
}
