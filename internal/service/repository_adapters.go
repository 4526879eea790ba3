package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/store"
)

// The repository interfaces below mirror the store interfaces the services
// depend on, plus DB() so a service can open a transaction spanning several
// repositories. The adapters let the postgres stores satisfy them directly.

// BookRepository defines the book persistence interface for the service layer.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error)
	ListDiscoverable(ctx context.Context, viewerID uuid.UUID, search store.BookSearch, includeAll bool) ([]*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction.
	WithTx(tx *sql.Tx) BookRepository

	// DB returns the underlying database connection.
	DB() *sql.DB
}

// RequestRepository defines the request ledger persistence interface for the
// service layer.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Request, error)
	HasPendingRequest(ctx context.Context, requesterID, bookID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus) error
	RejectOtherPending(ctx context.Context, bookID, acceptedID uuid.UUID) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter store.RequestFilter) ([]*store.RequestDetail, error)

	// WithTx returns a new repository instance bound to the transaction.
	WithTx(tx *sql.Tx) RequestRepository

	// DB returns the underlying database connection.
	DB() *sql.DB
}

// UserRepository defines the user persistence interface for the service layer.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	IncrementSwapScore(ctx context.Context, id uuid.UUID, delta int) error
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction.
	WithTx(tx *sql.Tx) UserRepository

	// DB returns the underlying database connection.
	DB() *sql.DB
}

// NewBookRepositoryAdapter creates an adapter that allows a store.BookStore
// to be used where a BookRepository is expected.
func NewBookRepositoryAdapter(bookStore store.BookStore, db *sql.DB) BookRepository {
	return &bookRepositoryAdapter{
		bookStore: bookStore,
		db:        db,
	}
}

type bookRepositoryAdapter struct {
	bookStore store.BookStore
	db        *sql.DB
}

func (a *bookRepositoryAdapter) Create(ctx context.Context, book *domain.Book) error {
	return a.bookStore.Create(ctx, book)
}

func (a *bookRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return a.bookStore.GetByID(ctx, id)
}

func (a *bookRepositoryAdapter) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return a.bookStore.GetByIDForUpdate(ctx, id)
}

func (a *bookRepositoryAdapter) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error) {
	return a.bookStore.ListByOwner(ctx, ownerID)
}

func (a *bookRepositoryAdapter) ListDiscoverable(
	ctx context.Context,
	viewerID uuid.UUID,
	search store.BookSearch,
	includeAll bool,
) ([]*domain.Book, error) {
	return a.bookStore.ListDiscoverable(ctx, viewerID, search, includeAll)
}

func (a *bookRepositoryAdapter) Update(ctx context.Context, book *domain.Book) error {
	return a.bookStore.Update(ctx, book)
}

func (a *bookRepositoryAdapter) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return a.bookStore.SetAvailability(ctx, id, available)
}

func (a *bookRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	return a.bookStore.Delete(ctx, id)
}

func (a *bookRepositoryAdapter) WithTx(tx *sql.Tx) BookRepository {
	return &bookRepositoryAdapter{
		bookStore: a.bookStore.WithTx(tx),
		db:        a.db,
	}
}

func (a *bookRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// NewRequestRepositoryAdapter creates an adapter that allows a
// store.RequestStore to be used where a RequestRepository is expected.
func NewRequestRepositoryAdapter(requestStore store.RequestStore, db *sql.DB) RequestRepository {
	return &requestRepositoryAdapter{
		requestStore: requestStore,
		db:           db,
	}
}

type requestRepositoryAdapter struct {
	requestStore store.RequestStore
	db           *sql.DB
}

func (a *requestRepositoryAdapter) Create(ctx context.Context, req *domain.Request) error {
	return a.requestStore.Create(ctx, req)
}

func (a *requestRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	return a.requestStore.GetByID(ctx, id)
}

func (a *requestRepositoryAdapter) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	return a.requestStore.GetByIDForUpdate(ctx, id)
}

func (a *requestRepositoryAdapter) HasPendingRequest(ctx context.Context, requesterID, bookID uuid.UUID) (bool, error) {
	return a.requestStore.HasPendingRequest(ctx, requesterID, bookID)
}

func (a *requestRepositoryAdapter) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus) error {
	return a.requestStore.UpdateStatus(ctx, id, status)
}

func (a *requestRepositoryAdapter) RejectOtherPending(ctx context.Context, bookID, acceptedID uuid.UUID) ([]uuid.UUID, error) {
	return a.requestStore.RejectOtherPending(ctx, bookID, acceptedID)
}

func (a *requestRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	return a.requestStore.Delete(ctx, id)
}

func (a *requestRepositoryAdapter) List(ctx context.Context, filter store.RequestFilter) ([]*store.RequestDetail, error) {
	return a.requestStore.List(ctx, filter)
}

func (a *requestRepositoryAdapter) WithTx(tx *sql.Tx) RequestRepository {
	return &requestRepositoryAdapter{
		requestStore: a.requestStore.WithTx(tx),
		db:           a.db,
	}
}

func (a *requestRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// NewUserRepositoryAdapter creates an adapter that allows a store.UserStore
// to be used where a UserRepository is expected.
func NewUserRepositoryAdapter(userStore store.UserStore, db *sql.DB) UserRepository {
	return &userRepositoryAdapter{
		userStore: userStore,
		db:        db,
	}
}

type userRepositoryAdapter struct {
	userStore store.UserStore
	db        *sql.DB
}

func (a *userRepositoryAdapter) Create(ctx context.Context, user *domain.User) error {
	return a.userStore.Create(ctx, user)
}

func (a *userRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return a.userStore.GetByID(ctx, id)
}

func (a *userRepositoryAdapter) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return a.userStore.GetByEmail(ctx, email)
}

func (a *userRepositoryAdapter) Update(ctx context.Context, user *domain.User) error {
	return a.userStore.Update(ctx, user)
}

func (a *userRepositoryAdapter) IncrementSwapScore(ctx context.Context, id uuid.UUID, delta int) error {
	return a.userStore.IncrementSwapScore(ctx, id, delta)
}

func (a *userRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	return a.userStore.Delete(ctx, id)
}

func (a *userRepositoryAdapter) WithTx(tx *sql.Tx) UserRepository {
	return &userRepositoryAdapter{
		userStore: a.userStore.WithTx(tx),
		db:        a.db,
	}
}

func (a *userRepositoryAdapter) DB() *sql.DB {
	return a.db
}
