package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
)

// RequestFilterKind tags the variant of a RequestFilter.
type RequestFilterKind int

// Request filter variants. Exactly one is honored per call; the constructors
// below are the only way to build a filter, so the choice is always explicit.
const (
	RequestFilterAll RequestFilterKind = iota
	RequestFilterByID
	RequestFilterByRequester
	RequestFilterByOwner
)

// RequestFilter is a tagged union selecting which requests a listing returns.
type RequestFilter struct {
	Kind RequestFilterKind
	ID   uuid.UUID
}

// FilterAll returns a filter matching every request.
func FilterAll() RequestFilter {
	return RequestFilter{Kind: RequestFilterAll}
}

// FilterByID returns a filter matching a single request by its ID.
func FilterByID(id uuid.UUID) RequestFilter {
	return RequestFilter{Kind: RequestFilterByID, ID: id}
}

// FilterByRequester returns a filter matching requests made by the user.
func FilterByRequester(requesterID uuid.UUID) RequestFilter {
	return RequestFilter{Kind: RequestFilterByRequester, ID: requesterID}
}

// FilterByOwner returns a filter matching requests addressed to the owner.
func FilterByOwner(ownerID uuid.UUID) RequestFilter {
	return RequestFilter{Kind: RequestFilterByOwner, ID: ownerID}
}

// RequestDetail is the read-model projection of a request joined with its
// book and the display names of both parties.
type RequestDetail struct {
	Request       domain.Request `json:"request"`
	BookTitle     string         `json:"book_title"`
	BookAuthor    string         `json:"book_author"`
	RequesterName string         `json:"requester_name"`
	OwnerName     string         `json:"owner_name"`
}

// RequestStore defines the interface for request ledger persistence.
type RequestStore interface {
	// Create inserts a new request row.
	// Returns ErrPendingRequestExists if the partial unique index on
	// (requester_id, book_id) WHERE status = 'PENDING' rejects the insert,
	// and ErrInvalidEntity on foreign key violations.
	Create(ctx context.Context, req *domain.Request) error

	// GetByID retrieves a request by its unique ID without locking.
	// Returns ErrRequestNotFound if the request does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error)

	// GetByIDForUpdate retrieves a request with a row-level lock
	// (SELECT ... FOR UPDATE). It must be called within a transaction;
	// two concurrent decisions on the same request serialize here, so the
	// loser observes the terminal status written by the winner.
	// Returns ErrRequestNotFound if the request does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Request, error)

	// HasPendingRequest reports whether requesterID already has a PENDING
	// request for bookID.
	HasPendingRequest(ctx context.Context, requesterID, bookID uuid.UUID) (bool, error)

	// UpdateStatus writes the request's status column.
	// Returns ErrRequestNotFound if the request does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus) error

	// RejectOtherPending marks every PENDING request on bookID, except
	// acceptedID, as REJECTED. Returns the IDs of the requests it rejected
	// so the caller can notify their requesters.
	RejectOtherPending(ctx context.Context, bookID, acceptedID uuid.UUID) ([]uuid.UUID, error)

	// Delete removes a request row by its ID.
	// Returns ErrRequestNotFound if the request does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns the joined request projection selected by the filter,
	// newest first.
	List(ctx context.Context, filter RequestFilter) ([]*RequestDetail, error)

	// WithTx returns a new RequestStore instance bound to the provided
	// transaction.
	WithTx(tx *sql.Tx) RequestStore
}
