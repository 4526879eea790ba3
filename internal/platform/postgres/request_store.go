package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/platform/logger"
	"github.com/chayma544/BookMate-back/internal/store"
)

const requestColumns = `id, requester_id, book_id, owner_id, type, status, start_date, duration_days, reason, created_at, updated_at`

// PostgresRequestStore implements the store.RequestStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRequestStore creates a new PostgreSQL implementation of the
// RequestStore interface. If logger is nil, a default logger will be used.
func NewPostgresRequestStore(db store.DBTX, logger *slog.Logger) *PostgresRequestStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "request_store")),
	}
}

// Ensure PostgresRequestStore implements store.RequestStore interface
var _ store.RequestStore = (*PostgresRequestStore)(nil)

// Create implements store.RequestStore.Create.
// The partial unique index on (requester_id, book_id) WHERE status = 'PENDING'
// is the backstop against duplicate pending requests that race past the
// application-level check.
func (s *PostgresRequestStore) Create(ctx context.Context, req *domain.Request) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		req.ID,
		req.RequesterID,
		req.BookID,
		req.OwnerID,
		req.Type,
		req.Status,
		req.StartDate,
		req.DurationDays,
		req.Reason,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrPendingRequestExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced user or book not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create request",
			slog.String("error", err.Error()),
			slog.String("request_id", req.ID.String()))
		return err
	}

	log.Info("request created",
		slog.String("request_id", req.ID.String()),
		slog.String("book_id", req.BookID.String()),
		slog.String("type", string(req.Type)))
	return nil
}

// GetByID implements store.RequestStore.GetByID.
func (s *PostgresRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	return scanRequest(s.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate implements store.RequestStore.GetByIDForUpdate.
func (s *PostgresRequestStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1 FOR UPDATE`
	return scanRequest(s.db.QueryRowContext(ctx, query, id))
}

// HasPendingRequest implements store.RequestStore.HasPendingRequest.
func (s *PostgresRequestStore) HasPendingRequest(ctx context.Context, requesterID, bookID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM requests
			WHERE requester_id = $1 AND book_id = $2 AND status = 'PENDING'
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, requesterID, bookID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for pending request: %w", err)
	}
	return exists, nil
}

// UpdateStatus implements store.RequestStore.UpdateStatus.
func (s *PostgresRequestStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE requests SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		log.Error("failed to update request status",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()))
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrRequestNotFound
	}

	log.Info("request status updated",
		slog.String("request_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// RejectOtherPending implements store.RequestStore.RejectOtherPending.
// Runs inside the acceptance transaction, after the accepted request's row
// lock is held, so no new PENDING row for the book can commit concurrently.
func (s *PostgresRequestStore) RejectOtherPending(ctx context.Context, bookID, acceptedID uuid.UUID) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE requests
		SET status = 'REJECTED', updated_at = NOW()
		WHERE book_id = $1 AND id <> $2 AND status = 'PENDING'
		RETURNING id
	`
	rows, err := s.db.QueryContext(ctx, query, bookID, acceptedID)
	if err != nil {
		return nil, fmt.Errorf("failed to reject competing requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rejected []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan rejected request ID: %w", err)
		}
		rejected = append(rejected, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rejected request rows: %w", err)
	}

	if len(rejected) > 0 {
		log.Info("rejected competing pending requests",
			slog.String("book_id", bookID.String()),
			slog.Int("count", len(rejected)))
	}
	return rejected, nil
}

// Delete implements store.RequestStore.Delete.
func (s *PostgresRequestStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete request",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()))
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrRequestNotFound
	}

	log.Info("request deleted", slog.String("request_id", id.String()))
	return nil
}

// List implements store.RequestStore.List.
func (s *PostgresRequestStore) List(ctx context.Context, filter store.RequestFilter) ([]*store.RequestDetail, error) {
	query := `
		SELECT r.id, r.requester_id, r.book_id, r.owner_id, r.type, r.status,
		       r.start_date, r.duration_days, r.reason, r.created_at, r.updated_at,
		       b.title, b.author,
		       requester.first_name || ' ' || requester.last_name,
		       owner.first_name || ' ' || owner.last_name
		FROM requests r
		JOIN books b ON b.id = r.book_id
		JOIN users requester ON requester.id = r.requester_id
		JOIN users owner ON owner.id = r.owner_id
	`

	var args []any
	switch filter.Kind {
	case store.RequestFilterByID:
		query += ` WHERE r.id = $1`
		args = append(args, filter.ID)
	case store.RequestFilterByRequester:
		query += ` WHERE r.requester_id = $1`
		args = append(args, filter.ID)
	case store.RequestFilterByOwner:
		query += ` WHERE r.owner_id = $1`
		args = append(args, filter.ID)
	case store.RequestFilterAll:
		// no predicate
	default:
		return nil, fmt.Errorf("unknown request filter kind: %d", filter.Kind)
	}
	query += ` ORDER BY r.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var details []*store.RequestDetail
	for rows.Next() {
		var d store.RequestDetail
		err := rows.Scan(
			&d.Request.ID,
			&d.Request.RequesterID,
			&d.Request.BookID,
			&d.Request.OwnerID,
			&d.Request.Type,
			&d.Request.Status,
			&d.Request.StartDate,
			&d.Request.DurationDays,
			&d.Request.Reason,
			&d.Request.CreatedAt,
			&d.Request.UpdatedAt,
			&d.BookTitle,
			&d.BookAuthor,
			&d.RequesterName,
			&d.OwnerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request detail row: %w", err)
		}
		details = append(details, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request rows: %w", err)
	}
	return details, nil
}

// WithTx implements store.RequestStore.WithTx.
func (s *PostgresRequestStore) WithTx(tx *sql.Tx) store.RequestStore {
	return &PostgresRequestStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanRequest(row *sql.Row) (*domain.Request, error) {
	var req domain.Request
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.BookID,
		&req.OwnerID,
		&req.Type,
		&req.Status,
		&req.StartDate,
		&req.DurationDays,
		&req.Reason,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to scan request row: %w", err)
	}
	return &req, nil
}
