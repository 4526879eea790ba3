package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/events"
	"github.com/chayma544/BookMate-back/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEmitter() events.EventEmitter {
	return events.NewInMemoryEventEmitter(testLogger())
}

// fakeBookRepo is an in-memory BookRepository for unit tests of
// non-transactional service paths.
type fakeBookRepo struct {
	mu    sync.Mutex
	books map[uuid.UUID]*domain.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[uuid.UUID]*domain.Book)}
}

func (r *fakeBookRepo) Create(_ context.Context, book *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *book
	r.books[book.ID] = &copied
	return nil
}

func (r *fakeBookRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, ok := r.books[id]
	if !ok {
		return nil, store.ErrBookNotFound
	}
	copied := *book
	return &copied, nil
}

func (r *fakeBookRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeBookRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Book
	for _, book := range r.books {
		if book.OwnerID == ownerID {
			copied := *book
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBookRepo) ListDiscoverable(
	_ context.Context,
	viewerID uuid.UUID,
	search store.BookSearch,
	includeAll bool,
) ([]*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Book
	for _, book := range r.books {
		if !includeAll && (book.OwnerID == viewerID || !book.Available) {
			continue
		}
		copied := *book
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeBookRepo) Update(_ context.Context, book *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[book.ID]; !ok {
		return store.ErrBookNotFound
	}
	copied := *book
	r.books[book.ID] = &copied
	return nil
}

func (r *fakeBookRepo) SetAvailability(_ context.Context, id uuid.UUID, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, ok := r.books[id]
	if !ok {
		return store.ErrBookNotFound
	}
	book.Available = available
	return nil
}

func (r *fakeBookRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return store.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *fakeBookRepo) WithTx(_ *sql.Tx) BookRepository { return r }
func (r *fakeBookRepo) DB() *sql.DB                     { return nil }

// fakeRequestRepo is an in-memory RequestRepository for unit tests.
type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*domain.Request
	details  map[uuid.UUID]*store.RequestDetail
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		requests: make(map[uuid.UUID]*domain.Request),
		details:  make(map[uuid.UUID]*store.RequestDetail),
	}
}

func (r *fakeRequestRepo) add(req *domain.Request, bookTitle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *req
	r.requests[req.ID] = &copied
	r.details[req.ID] = &store.RequestDetail{
		Request:   copied,
		BookTitle: bookTitle,
	}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *domain.Request) error {
	r.add(req, "")
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, store.ErrRequestNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *fakeRequestRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRequestRepo) HasPendingRequest(_ context.Context, requesterID, bookID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.RequesterID == requesterID && req.BookID == bookID && req.Status == domain.RequestStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return store.ErrRequestNotFound
	}
	req.Status = status
	return nil
}

func (r *fakeRequestRepo) RejectOtherPending(_ context.Context, bookID, acceptedID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rejected []uuid.UUID
	for id, req := range r.requests {
		if req.BookID == bookID && id != acceptedID && req.Status == domain.RequestStatusPending {
			req.Status = domain.RequestStatusRejected
			rejected = append(rejected, id)
		}
	}
	return rejected, nil
}

func (r *fakeRequestRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return store.ErrRequestNotFound
	}
	delete(r.requests, id)
	delete(r.details, id)
	return nil
}

func (r *fakeRequestRepo) List(_ context.Context, filter store.RequestFilter) ([]*store.RequestDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*store.RequestDetail
	for id, detail := range r.details {
		detail.Request = *r.requests[id]
		switch filter.Kind {
		case store.RequestFilterByID:
			if id != filter.ID {
				continue
			}
		case store.RequestFilterByRequester:
			if detail.Request.RequesterID != filter.ID {
				continue
			}
		case store.RequestFilterByOwner:
			if detail.Request.OwnerID != filter.ID {
				continue
			}
		}
		copied := *detail
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRequestRepo) WithTx(_ *sql.Tx) RequestRepository { return r }
func (r *fakeRequestRepo) DB() *sql.DB                        { return nil }

// fakeUserRepo is an in-memory UserRepository for unit tests.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) IncrementSwapScore(_ context.Context, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	user.SwapScore += delta
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) WithTx(_ *sql.Tx) UserRepository { return r }
func (r *fakeUserRepo) DB() *sql.DB                     { return nil }

// mustUser creates a valid user for tests.
func mustUser(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, "correct-horse-battery", "Test", "User")
	require.NoError(t, err)
	return user
}

// mustBook creates a valid book owned by ownerID.
func mustBook(t *testing.T, ownerID uuid.UUID, title string) *domain.Book {
	t.Helper()
	book, err := domain.NewBook(ownerID, title, "Anonymous")
	require.NoError(t, err)
	return book
}

// mustRequest creates a valid pending request against book.
func mustRequest(t *testing.T, requesterID uuid.UUID, book *domain.Book, reqType domain.RequestType) *domain.Request {
	t.Helper()
	req, err := domain.NewRequest(requesterID, book, reqType, domain.RequestMetadata{})
	require.NoError(t, err)
	return req
}
