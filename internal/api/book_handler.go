package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/api/middleware"
	"github.com/chayma544/BookMate-back/internal/api/shared"
	"github.com/chayma544/BookMate-back/internal/service"
	"github.com/chayma544/BookMate-back/internal/store"
)

// BookHandler serves the book catalog endpoints.
type BookHandler struct {
	bookService service.BookService
	logger      *slog.Logger
}

// NewBookHandler creates a BookHandler.
func NewBookHandler(bookService service.BookService, logger *slog.Logger) *BookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookHandler{
		bookService: bookService,
		logger:      logger.With(slog.String("component", "book_handler")),
	}
}

// Create handles POST /books.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateBookRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	book, err := h.bookService.CreateBook(r.Context(), actor, req.Title, req.Author, req.Details())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusCreated, book)
}

// Get handles GET /books/{bookID}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathUUID(r, "bookID")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid book ID", err)
		return
	}

	book, err := h.bookService.GetBook(r.Context(), bookID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, book)
}

// Discover handles GET /books. The title, author, and genre query parameters
// narrow the result.
func (h *BookHandler) Discover(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	search := store.BookSearch{
		Title:  r.URL.Query().Get("title"),
		Author: r.URL.Query().Get("author"),
		Genre:  r.URL.Query().Get("genre"),
	}

	books, err := h.bookService.Discover(r.Context(), actor, search)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, books)
}

// ListOwned handles GET /books/mine.
func (h *BookHandler) ListOwned(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	books, err := h.bookService.ListOwned(r.Context(), actor)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, books)
}

// Update handles PATCH /books/{bookID}.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	bookID, err := pathUUID(r, "bookID")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid book ID", err)
		return
	}

	var req UpdateBookRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	book, err := h.bookService.UpdateBook(r.Context(), actor, bookID, req.Patch())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, book)
}

// Delete handles DELETE /books/{bookID}.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	bookID, err := pathUUID(r, "bookID")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid book ID", err)
		return
	}

	if err := h.bookService.DeleteBook(r.Context(), actor, bookID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, http.StatusNoContent, nil)
}

// pathUUID parses the named chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// pathParam returns the raw named chi URL parameter.
func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
