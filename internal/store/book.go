package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
)

// BookSearch holds the optional filters of a catalog search.
// Empty fields do not constrain the result set.
type BookSearch struct {
	Title  string
	Author string
	Genre  string
}

// BookStore defines the interface for book catalog persistence.
type BookStore interface {
	// Create saves a new book listing.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its unique ID.
	// Returns ErrBookNotFound if the book does not exist.
	// This read takes no lock; use GetByIDForUpdate inside transactions
	// that will modify the book or depend on its availability.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// GetByIDForUpdate retrieves a book with a row-level lock
	// (SELECT ... FOR UPDATE). It must be called within a transaction and
	// serializes concurrent writers on the same book, which is what keeps
	// the availability check and subsequent writes free of lost updates.
	// Returns ErrBookNotFound if the book does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// ListByOwner retrieves all books listed by the given owner.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error)

	// ListDiscoverable retrieves available books not owned by viewerID,
	// optionally narrowed by search filters. When includeAll is true (admin
	// browsing) ownership and availability do not restrict the result.
	ListDiscoverable(ctx context.Context, viewerID uuid.UUID, search BookSearch, includeAll bool) ([]*domain.Book, error)

	// Update saves changes to an existing book listing.
	// Returns ErrBookNotFound if the book does not exist.
	Update(ctx context.Context, book *domain.Book) error

	// SetAvailability flips the book's availability flag. The write is
	// idempotent and performs no validation of the caller; invariant
	// enforcement belongs to the request ledger's transaction.
	// Returns ErrBookNotFound if the book does not exist.
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error

	// Delete removes a book listing by its ID.
	// Returns ErrBookNotFound if the book does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new BookStore instance bound to the provided
	// transaction.
	WithTx(tx *sql.Tx) BookStore
}
