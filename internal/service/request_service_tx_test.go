package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/platform/postgres"
	"github.com/chayma544/BookMate-back/internal/store"
	"github.com/chayma544/BookMate-back/internal/testutils"
)

// txFixture wires real postgres stores behind the services for integration
// tests. Rows are removed in cleanup by deleting the users, which cascades to
// their books and requests.
type txFixture struct {
	db       *sql.DB
	users    UserRepository
	requests RequestRepository
	svc      RequestService
}

func newTxFixture(t *testing.T) *txFixture {
	t.Helper()

	db := testutils.GetTestDB(t)
	logger := testLogger()

	userRepo := NewUserRepositoryAdapter(postgres.NewPostgresUserStore(db, bcrypt.MinCost, logger), db)
	bookRepo := NewBookRepositoryAdapter(postgres.NewPostgresBookStore(db, logger), db)
	requestRepo := NewRequestRepositoryAdapter(postgres.NewPostgresRequestStore(db, logger), db)

	svc, err := NewRequestService(requestRepo, bookRepo, userRepo, testEmitter(), logger)
	require.NoError(t, err)

	return &txFixture{
		db:       db,
		users:    userRepo,
		requests: requestRepo,
		svc:      svc,
	}
}

// newDBUser registers a user and schedules its removal.
func (f *txFixture) newDBUser(t *testing.T) *domain.User {
	t.Helper()

	user := mustUser(t, fmt.Sprintf("user-%s@example.com", uuid.NewString()))
	require.NoError(t, f.users.Create(context.Background(), user))
	t.Cleanup(func() {
		_ = f.users.Delete(context.Background(), user.ID)
	})
	return user
}

// newDBBook lists a book for owner.
func (f *txFixture) newDBBook(t *testing.T, svc BookService, ownerID uuid.UUID) *domain.Book {
	t.Helper()

	book, err := svc.CreateBook(context.Background(), Actor{ID: ownerID}, "Integration Copy", "Author", domain.BookPatch{})
	require.NoError(t, err)
	return book
}

func newTxBookService(t *testing.T, db *sql.DB) BookService {
	t.Helper()
	bookRepo := NewBookRepositoryAdapter(postgres.NewPostgresBookStore(db, testLogger()), db)
	svc, err := NewBookService(bookRepo, testLogger())
	require.NoError(t, err)
	return svc
}

func TestRequestLifecycleIntegration(t *testing.T) {
	f := newTxFixture(t)
	books := newTxBookService(t, f.db)
	ctx := context.Background()

	owner := f.newDBUser(t)
	requesterA := f.newDBUser(t)
	requesterB := f.newDBUser(t)
	book := f.newDBBook(t, books, owner.ID)

	reqA, err := f.svc.CreateRequest(ctx, Actor{ID: requesterA.ID}, book.ID, domain.RequestTypeBorrow, domain.RequestMetadata{
		DurationDays: 14,
		Reason:       "holiday reading",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, reqA.Status)
	assert.Equal(t, owner.ID, reqA.OwnerID)

	reqB, err := f.svc.CreateRequest(ctx, Actor{ID: requesterB.ID}, book.ID, domain.RequestTypeExchange, domain.RequestMetadata{})
	require.NoError(t, err)

	t.Run("duplicate pending request is rejected", func(t *testing.T) {
		_, err := f.svc.CreateRequest(ctx, Actor{ID: requesterA.ID}, book.ID, domain.RequestTypeBorrow, domain.RequestMetadata{})
		assert.ErrorIs(t, err, store.ErrPendingRequestExists)
	})

	t.Run("own book request is rejected", func(t *testing.T) {
		_, err := f.svc.CreateRequest(ctx, Actor{ID: owner.ID}, book.ID, domain.RequestTypeBorrow, domain.RequestMetadata{})
		assert.ErrorIs(t, err, domain.ErrOwnBookRequest)
	})

	t.Run("only the owner may decide", func(t *testing.T) {
		_, err := f.svc.DecideRequest(ctx, Actor{ID: requesterA.ID}, reqA.ID, domain.RequestStatusAccepted)
		assert.ErrorIs(t, err, ErrNotOwned)
	})

	t.Run("acceptance flips availability and auto-rejects competitors", func(t *testing.T) {
		decided, err := f.svc.DecideRequest(ctx, Actor{ID: owner.ID}, reqA.ID, domain.RequestStatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusAccepted, decided.Status)

		stored, err := books.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.False(t, stored.Available)

		competitor, err := f.requests.GetByID(ctx, reqB.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusRejected, competitor.Status)
	})

	t.Run("decided request cannot be decided again", func(t *testing.T) {
		_, err := f.svc.DecideRequest(ctx, Actor{ID: owner.ID}, reqA.ID, domain.RequestStatusAccepted)
		assert.ErrorIs(t, err, domain.ErrRequestAlreadyDecided)

		_, err = f.svc.DecideRequest(ctx, Actor{ID: owner.ID}, reqA.ID, domain.RequestStatusRejected)
		assert.ErrorIs(t, err, domain.ErrRequestAlreadyDecided)
	})

	t.Run("unavailable book takes no new requests", func(t *testing.T) {
		_, err := f.svc.CreateRequest(ctx, Actor{ID: requesterB.ID}, book.ID, domain.RequestTypeBorrow, domain.RequestMetadata{})
		assert.ErrorIs(t, err, ErrBookUnavailable)
	})

	t.Run("cancelled decided request is rejected", func(t *testing.T) {
		err := f.svc.CancelRequest(ctx, Actor{ID: requesterA.ID}, reqA.ID)
		assert.ErrorIs(t, err, domain.ErrRequestNotPending)
	})
}

func TestConcurrentAcceptSingleWinnerIntegration(t *testing.T) {
	f := newTxFixture(t)
	books := newTxBookService(t, f.db)
	ctx := context.Background()

	owner := f.newDBUser(t)
	requesterA := f.newDBUser(t)
	requesterB := f.newDBUser(t)
	book := f.newDBBook(t, books, owner.ID)

	reqA, err := f.svc.CreateRequest(ctx, Actor{ID: requesterA.ID}, book.ID, domain.RequestTypeBorrow, domain.RequestMetadata{})
	require.NoError(t, err)
	reqB, err := f.svc.CreateRequest(ctx, Actor{ID: requesterB.ID}, book.ID, domain.RequestTypeBorrow, domain.RequestMetadata{})
	require.NoError(t, err)

	start := make(chan struct{})
	results := make(chan error, 2)
	for _, id := range []uuid.UUID{reqA.ID, reqB.ID} {
		go func(requestID uuid.UUID) {
			<-start
			_, err := f.svc.DecideRequest(ctx, Actor{ID: owner.ID}, requestID, domain.RequestStatusAccepted)
			results <- err
		}(id)
	}
	close(start)

	var failures []error
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			failures = append(failures, err)
		}
	}

	// The acceptances serialize on the book row lock; the loser finds its
	// request auto-rejected by the winner when it re-reads under the lock.
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], domain.ErrRequestAlreadyDecided)

	stored, err := books.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, stored.Available)

	afterA, err := f.requests.GetByID(ctx, reqA.ID)
	require.NoError(t, err)
	afterB, err := f.requests.GetByID(ctx, reqB.ID)
	require.NoError(t, err)

	statuses := []domain.RequestStatus{afterA.Status, afterB.Status}
	assert.Contains(t, statuses, domain.RequestStatusAccepted)
	assert.Contains(t, statuses, domain.RequestStatusRejected)
}

func TestRejectKeepsBookAvailableIntegration(t *testing.T) {
	f := newTxFixture(t)
	books := newTxBookService(t, f.db)
	ctx := context.Background()

	owner := f.newDBUser(t)
	requester := f.newDBUser(t)
	book := f.newDBBook(t, books, owner.ID)

	req, err := f.svc.CreateRequest(ctx, Actor{ID: requester.ID}, book.ID, domain.RequestTypeBorrow, domain.RequestMetadata{})
	require.NoError(t, err)

	decided, err := f.svc.DecideRequest(ctx, Actor{ID: owner.ID}, req.ID, domain.RequestStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, decided.Status)

	stored, err := books.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, stored.Available)

	// A rejection frees the requester to ask again.
	_, err = f.svc.CreateRequest(ctx, Actor{ID: requester.ID}, book.ID, domain.RequestTypeBorrow, domain.RequestMetadata{})
	assert.NoError(t, err)
}

func TestExchangeAcceptIncrementsSwapScoresIntegration(t *testing.T) {
	f := newTxFixture(t)
	books := newTxBookService(t, f.db)
	ctx := context.Background()

	owner := f.newDBUser(t)
	requester := f.newDBUser(t)
	book := f.newDBBook(t, books, owner.ID)

	req, err := f.svc.CreateRequest(ctx, Actor{ID: requester.ID}, book.ID, domain.RequestTypeExchange, domain.RequestMetadata{})
	require.NoError(t, err)

	_, err = f.svc.DecideRequest(ctx, Actor{ID: owner.ID}, req.ID, domain.RequestStatusAccepted)
	require.NoError(t, err)

	ownerAfter, err := f.users.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	requesterAfter, err := f.users.GetByID(ctx, requester.ID)
	require.NoError(t, err)

	assert.Equal(t, owner.SwapScore+1, ownerAfter.SwapScore)
	assert.Equal(t, requester.SwapScore+1, requesterAfter.SwapScore)
}

func TestCancelPendingRequestIntegration(t *testing.T) {
	f := newTxFixture(t)
	books := newTxBookService(t, f.db)
	ctx := context.Background()

	owner := f.newDBUser(t)
	requester := f.newDBUser(t)
	stranger := f.newDBUser(t)
	book := f.newDBBook(t, books, owner.ID)

	req, err := f.svc.CreateRequest(ctx, Actor{ID: requester.ID}, book.ID, domain.RequestTypeBorrow, domain.RequestMetadata{})
	require.NoError(t, err)

	t.Run("only the requester may cancel", func(t *testing.T) {
		err := f.svc.CancelRequest(ctx, Actor{ID: stranger.ID}, req.ID)
		assert.ErrorIs(t, err, ErrNotOwned)

		err = f.svc.CancelRequest(ctx, Actor{ID: owner.ID}, req.ID)
		assert.ErrorIs(t, err, ErrNotOwned)
	})

	t.Run("requester cancels a pending request", func(t *testing.T) {
		require.NoError(t, f.svc.CancelRequest(ctx, Actor{ID: requester.ID}, req.ID))

		_, err := f.requests.GetByID(ctx, req.ID)
		assert.ErrorIs(t, err, store.ErrRequestNotFound)
	})
}
