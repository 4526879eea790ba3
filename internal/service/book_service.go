package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/platform/logger"
	"github.com/chayma544/BookMate-back/internal/store"
)

// BookService provides catalog operations over book listings.
type BookService interface {
	// CreateBook lists a new book owned by the actor. Title and author are
	// required; the optional details patch fills in the remaining fields.
	CreateBook(ctx context.Context, actor Actor, title, author string, details domain.BookPatch) (*domain.Book, error)

	// GetBook retrieves a single book listing.
	GetBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error)

	// ListOwned returns the actor's own listings, newest first.
	ListOwned(ctx context.Context, actor Actor) ([]*domain.Book, error)

	// Discover returns listings matching the search that the actor could
	// request: available books owned by other users. Admins see everything.
	Discover(ctx context.Context, actor Actor, search store.BookSearch) ([]*domain.Book, error)

	// UpdateBook applies an allow-listed sparse update to a listing. Only the
	// owner (or an admin) may update.
	UpdateBook(ctx context.Context, actor Actor, bookID uuid.UUID, patch domain.BookPatch) (*domain.Book, error)

	// DeleteBook removes a listing and, via cascade, every request against
	// it. Only the owner (or an admin) may delete.
	DeleteBook(ctx context.Context, actor Actor, bookID uuid.UUID) error
}

type bookServiceImpl struct {
	bookRepo BookRepository
	logger   *slog.Logger
}

// NewBookService creates a new BookService.
func NewBookService(bookRepo BookRepository, logger *slog.Logger) (BookService, error) {
	if bookRepo == nil {
		return nil, NewServiceError("book", "new", "bookRepo cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &bookServiceImpl{
		bookRepo: bookRepo,
		logger:   logger.With(slog.String("component", "book_service")),
	}, nil
}

// CreateBook implements BookService.CreateBook.
func (s *bookServiceImpl) CreateBook(
	ctx context.Context,
	actor Actor,
	title, author string,
	details domain.BookPatch,
) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	book, err := domain.NewBook(actor.ID, title, author)
	if err != nil {
		return nil, err
	}
	if !details.IsEmpty() {
		if err := details.Apply(book); err != nil {
			return nil, err
		}
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	log.Info("book listed",
		slog.String("book_id", book.ID.String()),
		slog.String("owner_id", actor.ID.String()))
	return book, nil
}

// GetBook implements BookService.GetBook.
func (s *bookServiceImpl) GetBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error) {
	return s.bookRepo.GetByID(ctx, bookID)
}

// ListOwned implements BookService.ListOwned.
func (s *bookServiceImpl) ListOwned(ctx context.Context, actor Actor) ([]*domain.Book, error) {
	books, err := s.bookRepo.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, NewServiceError("book", "list_owned", "failed to list books", err)
	}
	return books, nil
}

// Discover implements BookService.Discover.
func (s *bookServiceImpl) Discover(
	ctx context.Context,
	actor Actor,
	search store.BookSearch,
) ([]*domain.Book, error) {
	books, err := s.bookRepo.ListDiscoverable(ctx, actor.ID, search, actor.Admin)
	if err != nil {
		return nil, NewServiceError("book", "discover", "failed to search books", err)
	}
	return books, nil
}

// UpdateBook implements BookService.UpdateBook.
func (s *bookServiceImpl) UpdateBook(
	ctx context.Context,
	actor Actor,
	bookID uuid.UUID,
	patch domain.BookPatch,
) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && !book.IsOwnedBy(actor.ID) {
		return nil, ErrNotOwned
	}

	if err := patch.Apply(book); err != nil {
		return nil, err
	}
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	log.Info("book updated", slog.String("book_id", bookID.String()))
	return book, nil
}

// DeleteBook implements BookService.DeleteBook.
func (s *bookServiceImpl) DeleteBook(ctx context.Context, actor Actor, bookID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	if !actor.Admin && !book.IsOwnedBy(actor.ID) {
		return ErrNotOwned
	}

	if err := s.bookRepo.Delete(ctx, bookID); err != nil {
		return err
	}

	log.Info("book deleted", slog.String("book_id", bookID.String()))
	return nil
}
