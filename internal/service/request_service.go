package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/events"
	"github.com/chayma544/BookMate-back/internal/platform/logger"
	"github.com/chayma544/BookMate-back/internal/store"
)

// RequestService provides operations over the borrow/exchange request ledger.
// All state transitions run in a single database transaction; notification
// events are emitted only after the transaction commits.
type RequestService interface {
	// CreateRequest opens a PENDING request by the actor against bookID.
	// Fails if the book is unavailable, owned by the actor, or already has a
	// pending request from the actor.
	CreateRequest(
		ctx context.Context,
		actor Actor,
		bookID uuid.UUID,
		reqType domain.RequestType,
		meta domain.RequestMetadata,
	) (*domain.Request, error)

	// DecideRequest moves a PENDING request to ACCEPTED or REJECTED. Only the
	// book's owner (or an admin) may decide. Acceptance also marks the book
	// unavailable and auto-rejects every other pending request for it.
	DecideRequest(
		ctx context.Context,
		actor Actor,
		requestID uuid.UUID,
		status domain.RequestStatus,
	) (*domain.Request, error)

	// CancelRequest withdraws a PENDING request. Only the requester (or an
	// admin) may cancel; decided requests cannot be cancelled.
	CancelRequest(ctx context.Context, actor Actor, requestID uuid.UUID) error

	// GetRequest returns one request with its joined book and party names.
	// Visible only to the requester, the book owner, and admins.
	GetRequest(ctx context.Context, actor Actor, requestID uuid.UUID) (*store.RequestDetail, error)

	// ListSent returns the requests the actor has made, newest first.
	ListSent(ctx context.Context, actor Actor) ([]*store.RequestDetail, error)

	// ListReceived returns the requests addressed to the actor's books,
	// newest first.
	ListReceived(ctx context.Context, actor Actor) ([]*store.RequestDetail, error)

	// ListAll returns every request. Admin only.
	ListAll(ctx context.Context, actor Actor) ([]*store.RequestDetail, error)
}

// swapScoreDelta is added to both parties' swap scores when an exchange
// request is accepted.
const swapScoreDelta = 1

type requestServiceImpl struct {
	requestRepo RequestRepository
	bookRepo    BookRepository
	userRepo    UserRepository
	emitter     events.EventEmitter
	logger      *slog.Logger
}

// NewRequestService creates a new RequestService.
// It returns an error if any of the required dependencies are nil.
func NewRequestService(
	requestRepo RequestRepository,
	bookRepo BookRepository,
	userRepo UserRepository,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (RequestService, error) {
	if requestRepo == nil {
		return nil, NewServiceError("request", "new", "requestRepo cannot be nil", nil)
	}
	if bookRepo == nil {
		return nil, NewServiceError("request", "new", "bookRepo cannot be nil", nil)
	}
	if userRepo == nil {
		return nil, NewServiceError("request", "new", "userRepo cannot be nil", nil)
	}
	if emitter == nil {
		return nil, NewServiceError("request", "new", "emitter cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &requestServiceImpl{
		requestRepo: requestRepo,
		bookRepo:    bookRepo,
		userRepo:    userRepo,
		emitter:     emitter,
		logger:      logger.With(slog.String("component", "request_service")),
	}, nil
}

// CreateRequest implements RequestService.CreateRequest.
// The book row is locked for the duration of the transaction, so the
// duplicate check and the insert are atomic with respect to competing
// requesters for the same book.
func (s *requestServiceImpl) CreateRequest(
	ctx context.Context,
	actor Actor,
	bookID uuid.UUID,
	reqType domain.RequestType,
	meta domain.RequestMetadata,
) (*domain.Request, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.ValidRequestType(reqType) {
		return nil, NewServiceError("request", "create", "unrecognized request type", domain.ErrInvalidRequestType)
	}

	var created *domain.Request
	err := store.RunInTransaction(ctx, s.requestRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txBooks := s.bookRepo.WithTx(tx)
		txRequests := s.requestRepo.WithTx(tx)

		book, err := txBooks.GetByIDForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if !book.Available {
			return ErrBookUnavailable
		}

		req, err := domain.NewRequest(actor.ID, book, reqType, meta)
		if err != nil {
			return err
		}

		exists, err := txRequests.HasPendingRequest(ctx, actor.ID, bookID)
		if err != nil {
			return NewServiceError("request", "create", "failed to check for pending request", err)
		}
		if exists {
			return store.ErrPendingRequestExists
		}

		if err := txRequests.Create(ctx, req); err != nil {
			return err
		}

		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("request created",
		slog.String("request_id", created.ID.String()),
		slog.String("requester_id", actor.ID.String()),
		slog.String("book_id", bookID.String()),
		slog.String("type", string(reqType)))
	return created, nil
}

// DecideRequest implements RequestService.DecideRequest.
// Every writer that touches both tables locks the book row before any
// request row; two concurrent decisions on the same book serialize on the
// book lock and the loser observes its request already rejected.
func (s *requestServiceImpl) DecideRequest(
	ctx context.Context,
	actor Actor,
	requestID uuid.UUID,
	status domain.RequestStatus,
) (*domain.Request, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.ValidDecision(status) {
		return nil, NewServiceError("request", "decide", "unrecognized decision status", domain.ErrInvalidStatusTransition)
	}

	var (
		decided     *domain.Request
		bookTitle   string
		rejectedIDs []uuid.UUID
	)

	err := store.RunInTransaction(ctx, s.requestRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRequests := s.requestRepo.WithTx(tx)
		txBooks := s.bookRepo.WithTx(tx)
		txUsers := s.userRepo.WithTx(tx)

		// Unlocked read to learn the book; OwnerID is immutable, so the
		// ownership check is safe before any lock is held.
		req, err := txRequests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if !actor.Admin && req.OwnerID != actor.ID {
			return ErrNotOwned
		}

		book, err := txBooks.GetByIDForUpdate(ctx, req.BookID)
		if err != nil {
			return err
		}
		bookTitle = book.Title

		// Re-read under the lock; a competing acceptance may have rejected
		// or removed this request while we waited for the book row.
		req, err = txRequests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}

		// Rejects re-application of a terminal status as well, so every
		// decision is observable exactly once.
		if err := req.Decide(status); err != nil {
			return err
		}

		if status == domain.RequestStatusRejected {
			if err := txRequests.UpdateStatus(ctx, req.ID, status); err != nil {
				return err
			}
			decided = req
			return nil
		}

		// Acceptance path.
		if !book.Available {
			return ErrBookUnavailable
		}
		if err := txRequests.UpdateStatus(ctx, req.ID, status); err != nil {
			return err
		}
		if err := txBooks.SetAvailability(ctx, book.ID, false); err != nil {
			return err
		}

		rejectedIDs, err = txRequests.RejectOtherPending(ctx, book.ID, req.ID)
		if err != nil {
			return err
		}

		if req.IsExchange() {
			if err := txUsers.IncrementSwapScore(ctx, req.RequesterID, swapScoreDelta); err != nil {
				return err
			}
			if err := txUsers.IncrementSwapScore(ctx, req.OwnerID, swapScoreDelta); err != nil {
				return err
			}
		}

		decided = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("request decided",
		slog.String("request_id", decided.ID.String()),
		slog.String("status", string(decided.Status)),
		slog.Int("auto_rejected", len(rejectedIDs)))

	s.emitDecisionEvents(ctx, decided, bookTitle, rejectedIDs)
	return decided, nil
}

// emitDecisionEvents notifies the decided request's requester and the
// requesters of every auto-rejected competitor. Runs after commit; failures
// are logged and never surfaced to the caller.
func (s *requestServiceImpl) emitDecisionEvents(
	ctx context.Context,
	decided *domain.Request,
	bookTitle string,
	rejectedIDs []uuid.UUID,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.emitDecisionEvent(ctx, events.RequestDecidedPayload{
		RequestID:   decided.ID,
		RecipientID: decided.RequesterID,
		BookTitle:   bookTitle,
		Status:      string(decided.Status),
	})

	for _, id := range rejectedIDs {
		req, err := s.requestRepo.GetByID(ctx, id)
		if err != nil {
			log.Error("failed to load auto-rejected request for notification",
				slog.String("request_id", id.String()),
				slog.String("error", err.Error()))
			continue
		}
		s.emitDecisionEvent(ctx, events.RequestDecidedPayload{
			RequestID:   req.ID,
			RecipientID: req.RequesterID,
			BookTitle:   bookTitle,
			Status:      string(domain.RequestStatusRejected),
		})
	}
}

func (s *requestServiceImpl) emitDecisionEvent(ctx context.Context, payload events.RequestDecidedPayload) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskRequestEvent(events.EventTypeRequestDecided, payload)
	if err != nil {
		log.Error("failed to build decision event",
			slog.String("request_id", payload.RequestID.String()),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit decision event",
			slog.String("request_id", payload.RequestID.String()),
			slog.String("error", err.Error()))
	}
}

// CancelRequest implements RequestService.CancelRequest.
func (s *requestServiceImpl) CancelRequest(ctx context.Context, actor Actor, requestID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.requestRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRequests := s.requestRepo.WithTx(tx)

		req, err := txRequests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !actor.Admin && req.RequesterID != actor.ID {
			return ErrNotOwned
		}
		if !req.IsPending() {
			return domain.ErrRequestNotPending
		}

		return txRequests.Delete(ctx, req.ID)
	})
	if err != nil {
		return err
	}

	log.Info("request cancelled", slog.String("request_id", requestID.String()))
	return nil
}

// GetRequest implements RequestService.GetRequest.
func (s *requestServiceImpl) GetRequest(
	ctx context.Context,
	actor Actor,
	requestID uuid.UUID,
) (*store.RequestDetail, error) {
	details, err := s.requestRepo.List(ctx, store.FilterByID(requestID))
	if err != nil {
		return nil, NewServiceError("request", "get", "failed to load request", err)
	}
	if len(details) == 0 {
		return nil, store.ErrRequestNotFound
	}

	detail := details[0]
	if !actor.Admin && detail.Request.RequesterID != actor.ID && detail.Request.OwnerID != actor.ID {
		return nil, ErrNotOwned
	}
	return detail, nil
}

// ListSent implements RequestService.ListSent.
func (s *requestServiceImpl) ListSent(ctx context.Context, actor Actor) ([]*store.RequestDetail, error) {
	details, err := s.requestRepo.List(ctx, store.FilterByRequester(actor.ID))
	if err != nil {
		return nil, NewServiceError("request", "list_sent", "failed to list requests", err)
	}
	return details, nil
}

// ListReceived implements RequestService.ListReceived.
func (s *requestServiceImpl) ListReceived(ctx context.Context, actor Actor) ([]*store.RequestDetail, error) {
	details, err := s.requestRepo.List(ctx, store.FilterByOwner(actor.ID))
	if err != nil {
		return nil, NewServiceError("request", "list_received", "failed to list requests", err)
	}
	return details, nil
}

// ListAll implements RequestService.ListAll.
func (s *requestServiceImpl) ListAll(ctx context.Context, actor Actor) ([]*store.RequestDetail, error) {
	if !actor.Admin {
		return nil, ErrAdminRequired
	}
	details, err := s.requestRepo.List(ctx, store.FilterAll())
	if err != nil {
		return nil, NewServiceError("request", "list_all", "failed to list requests", err)
	}
	return details, nil
}
