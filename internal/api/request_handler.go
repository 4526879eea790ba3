package api

import (
	"log/slog"
	"net/http"

	"github.com/chayma544/BookMate-back/internal/api/middleware"
	"github.com/chayma544/BookMate-back/internal/api/shared"
	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/service"
)

// RequestHandler serves the borrow and exchange request endpoints.
type RequestHandler struct {
	requestService service.RequestService
	logger         *slog.Logger
}

// NewRequestHandler creates a RequestHandler.
func NewRequestHandler(requestService service.RequestService, logger *slog.Logger) *RequestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestHandler{
		requestService: requestService,
		logger:         logger.With(slog.String("component", "request_handler")),
	}
}

// Create handles POST /requests.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateRequestRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	created, err := h.requestService.CreateRequest(
		r.Context(), actor, req.BookID, domain.RequestType(req.Type), req.Metadata())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusCreated, created)
}

// Get handles GET /requests/{requestID}.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request ID", err)
		return
	}

	detail, err := h.requestService.GetRequest(r.Context(), actor, requestID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, detail)
}

// Decide handles PUT /requests/{requestID}/status. ACCEPTED additionally marks
// the book unavailable and auto-rejects its other pending requests.
func (h *RequestHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request ID", err)
		return
	}

	var req DecideRequestRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	decided, err := h.requestService.DecideRequest(
		r.Context(), actor, requestID, domain.RequestStatus(req.Status))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, decided)
}

// Cancel handles DELETE /requests/{requestID}.
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request ID", err)
		return
	}

	if err := h.requestService.CancelRequest(r.Context(), actor, requestID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusNoContent, nil)
}

// ListSent handles GET /requests/sent.
func (h *RequestHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	details, err := h.requestService.ListSent(r.Context(), actor)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, details)
}

// ListReceived handles GET /requests/received.
func (h *RequestHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	details, err := h.requestService.ListReceived(r.Context(), actor)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, details)
}

// ListAll handles GET /requests. Admin only.
func (h *RequestHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	details, err := h.requestService.ListAll(r.Context(), actor)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, details)
}
