package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/platform/logger"
	"github.com/chayma544/BookMate-back/internal/store"
)

// dialect builds the dynamic catalog queries. The static queries stay as
// plain SQL strings; only the search, whose WHERE clause depends on which
// filters the caller supplied, benefits from a builder.
var dialect = goqu.Dialect("postgres")

const bookColumns = `id, owner_id, title, author, language, genre, release_date, condition, cover_url, available, created_at, updated_at`

// PostgresBookStore implements the store.BookStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBookStore creates a new PostgreSQL implementation of the
// BookStore interface. If logger is nil, a default logger will be used.
func NewPostgresBookStore(db store.DBTX, logger *slog.Logger) *PostgresBookStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

// Ensure PostgresBookStore implements store.BookStore interface
var _ store.BookStore = (*PostgresBookStore)(nil)

// Create implements store.BookStore.Create.
func (s *PostgresBookStore) Create(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := book.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		book.ID,
		book.OwnerID,
		book.Title,
		book.Author,
		book.Language,
		book.Genre,
		book.ReleaseDate,
		book.Condition,
		book.CoverURL,
		book.Available,
		book.CreatedAt,
		book.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner %s not found", store.ErrInvalidEntity, book.OwnerID)
		}
		log.Error("failed to create book",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return err
	}

	log.Info("book created",
		slog.String("book_id", book.ID.String()),
		slog.String("owner_id", book.OwnerID.String()))
	return nil
}

// GetByID implements store.BookStore.GetByID.
func (s *PostgresBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return scanBook(s.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate implements store.BookStore.GetByIDForUpdate.
// The row lock is what serializes concurrent requesters and deciders on the
// same book; callers must hold an open transaction.
func (s *PostgresBookStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`
	return scanBook(s.db.QueryRowContext(ctx, query, id))
}

// ListByOwner implements store.BookStore.ListByOwner.
func (s *PostgresBookStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query books by owner: %w", err)
	}
	return collectBooks(rows)
}

// ListDiscoverable implements store.BookStore.ListDiscoverable.
// The WHERE clause is assembled from whichever search filters are set;
// non-admin viewers only see available books they do not own.
func (s *PostgresBookStore) ListDiscoverable(
	ctx context.Context,
	viewerID uuid.UUID,
	search store.BookSearch,
	includeAll bool,
) ([]*domain.Book, error) {
	ds := dialect.From("books").
		Select(
			"id", "owner_id", "title", "author", "language", "genre",
			"release_date", "condition", "cover_url", "available",
			"created_at", "updated_at",
		).
		Order(goqu.C("created_at").Desc())

	if !includeAll {
		ds = ds.Where(
			goqu.C("owner_id").Neq(viewerID),
			goqu.C("available").IsTrue(),
		)
	}
	if search.Title != "" {
		ds = ds.Where(goqu.C("title").ILike("%" + search.Title + "%"))
	}
	if search.Author != "" {
		ds = ds.Where(goqu.C("author").ILike("%" + search.Author + "%"))
	}
	if search.Genre != "" {
		ds = ds.Where(goqu.C("genre").Eq(search.Genre))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build discover query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query discoverable books: %w", err)
	}
	return collectBooks(rows)
}

// Update implements store.BookStore.Update.
func (s *PostgresBookStore) Update(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := book.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE books
		SET title = $1, author = $2, language = $3, genre = $4,
		    release_date = $5, condition = $6, cover_url = $7,
		    available = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(ctx, query,
		book.Title,
		book.Author,
		book.Language,
		book.Genre,
		book.ReleaseDate,
		book.Condition,
		book.CoverURL,
		book.Available,
		book.UpdatedAt,
		book.ID,
	)
	if err != nil {
		log.Error("failed to update book",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrBookNotFound
	}
	return nil
}

// SetAvailability implements store.BookStore.SetAvailability.
// The write is idempotent: setting the current value is not an error.
func (s *PostgresBookStore) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE books SET available = $1, updated_at = NOW() WHERE id = $2`,
		available, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set book availability: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrBookNotFound
	}
	return nil
}

// Delete implements store.BookStore.Delete.
// Requests referencing the book are removed by ON DELETE CASCADE.
func (s *PostgresBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete book",
			slog.String("error", err.Error()),
			slog.String("book_id", id.String()))
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrBookNotFound
	}

	log.Info("book deleted", slog.String("book_id", id.String()))
	return nil
}

// WithTx implements store.BookStore.WithTx.
func (s *PostgresBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return &PostgresBookStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanBook(row *sql.Row) (*domain.Book, error) {
	var book domain.Book
	err := row.Scan(
		&book.ID,
		&book.OwnerID,
		&book.Title,
		&book.Author,
		&book.Language,
		&book.Genre,
		&book.ReleaseDate,
		&book.Condition,
		&book.CoverURL,
		&book.Available,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to scan book row: %w", err)
	}
	return &book, nil
}

func collectBooks(rows *sql.Rows) ([]*domain.Book, error) {
	defer func() { _ = rows.Close() }()

	var books []*domain.Book
	for rows.Next() {
		var book domain.Book
		err := rows.Scan(
			&book.ID,
			&book.OwnerID,
			&book.Title,
			&book.Author,
			&book.Language,
			&book.Genre,
			&book.ReleaseDate,
			&book.Condition,
			&book.CoverURL,
			&book.Available,
			&book.CreatedAt,
			&book.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, &book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating book rows: %w", err)
	}
	return books, nil
}
