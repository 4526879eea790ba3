package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/api/shared"
	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/service"
	"github.com/chayma544/BookMate-back/internal/service/auth"
	"github.com/chayma544/BookMate-back/internal/store"
)

var errStubNotConfigured = errors.New("stub not configured")

// withActor is a test middleware that injects an already-authenticated actor,
// bypassing token validation.
func withActor(actor service.Actor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), shared.ActorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type stubBookService struct {
	createFn    func(ctx context.Context, actor service.Actor, title, author string, details domain.BookPatch) (*domain.Book, error)
	getFn       func(ctx context.Context, bookID uuid.UUID) (*domain.Book, error)
	listOwnedFn func(ctx context.Context, actor service.Actor) ([]*domain.Book, error)
	discoverFn  func(ctx context.Context, actor service.Actor, search store.BookSearch) ([]*domain.Book, error)
	updateFn    func(ctx context.Context, actor service.Actor, bookID uuid.UUID, patch domain.BookPatch) (*domain.Book, error)
	deleteFn    func(ctx context.Context, actor service.Actor, bookID uuid.UUID) error
}

func (s *stubBookService) CreateBook(ctx context.Context, actor service.Actor, title, author string, details domain.BookPatch) (*domain.Book, error) {
	if s.createFn == nil {
		return nil, errStubNotConfigured
	}
	return s.createFn(ctx, actor, title, author, details)
}

func (s *stubBookService) GetBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error) {
	if s.getFn == nil {
		return nil, errStubNotConfigured
	}
	return s.getFn(ctx, bookID)
}

func (s *stubBookService) ListOwned(ctx context.Context, actor service.Actor) ([]*domain.Book, error) {
	if s.listOwnedFn == nil {
		return nil, errStubNotConfigured
	}
	return s.listOwnedFn(ctx, actor)
}

func (s *stubBookService) Discover(ctx context.Context, actor service.Actor, search store.BookSearch) ([]*domain.Book, error) {
	if s.discoverFn == nil {
		return nil, errStubNotConfigured
	}
	return s.discoverFn(ctx, actor, search)
}

func (s *stubBookService) UpdateBook(ctx context.Context, actor service.Actor, bookID uuid.UUID, patch domain.BookPatch) (*domain.Book, error) {
	if s.updateFn == nil {
		return nil, errStubNotConfigured
	}
	return s.updateFn(ctx, actor, bookID, patch)
}

func (s *stubBookService) DeleteBook(ctx context.Context, actor service.Actor, bookID uuid.UUID) error {
	if s.deleteFn == nil {
		return errStubNotConfigured
	}
	return s.deleteFn(ctx, actor, bookID)
}

type stubRequestService struct {
	createFn       func(ctx context.Context, actor service.Actor, bookID uuid.UUID, reqType domain.RequestType, meta domain.RequestMetadata) (*domain.Request, error)
	decideFn       func(ctx context.Context, actor service.Actor, requestID uuid.UUID, status domain.RequestStatus) (*domain.Request, error)
	cancelFn       func(ctx context.Context, actor service.Actor, requestID uuid.UUID) error
	getFn          func(ctx context.Context, actor service.Actor, requestID uuid.UUID) (*store.RequestDetail, error)
	listSentFn     func(ctx context.Context, actor service.Actor) ([]*store.RequestDetail, error)
	listReceivedFn func(ctx context.Context, actor service.Actor) ([]*store.RequestDetail, error)
	listAllFn      func(ctx context.Context, actor service.Actor) ([]*store.RequestDetail, error)
}

func (s *stubRequestService) CreateRequest(ctx context.Context, actor service.Actor, bookID uuid.UUID, reqType domain.RequestType, meta domain.RequestMetadata) (*domain.Request, error) {
	if s.createFn == nil {
		return nil, errStubNotConfigured
	}
	return s.createFn(ctx, actor, bookID, reqType, meta)
}

func (s *stubRequestService) DecideRequest(ctx context.Context, actor service.Actor, requestID uuid.UUID, status domain.RequestStatus) (*domain.Request, error) {
	if s.decideFn == nil {
		return nil, errStubNotConfigured
	}
	return s.decideFn(ctx, actor, requestID, status)
}

func (s *stubRequestService) CancelRequest(ctx context.Context, actor service.Actor, requestID uuid.UUID) error {
	if s.cancelFn == nil {
		return errStubNotConfigured
	}
	return s.cancelFn(ctx, actor, requestID)
}

func (s *stubRequestService) GetRequest(ctx context.Context, actor service.Actor, requestID uuid.UUID) (*store.RequestDetail, error) {
	if s.getFn == nil {
		return nil, errStubNotConfigured
	}
	return s.getFn(ctx, actor, requestID)
}

func (s *stubRequestService) ListSent(ctx context.Context, actor service.Actor) ([]*store.RequestDetail, error) {
	if s.listSentFn == nil {
		return nil, errStubNotConfigured
	}
	return s.listSentFn(ctx, actor)
}

func (s *stubRequestService) ListReceived(ctx context.Context, actor service.Actor) ([]*store.RequestDetail, error) {
	if s.listReceivedFn == nil {
		return nil, errStubNotConfigured
	}
	return s.listReceivedFn(ctx, actor)
}

func (s *stubRequestService) ListAll(ctx context.Context, actor service.Actor) ([]*store.RequestDetail, error) {
	if s.listAllFn == nil {
		return nil, errStubNotConfigured
	}
	return s.listAllFn(ctx, actor)
}

type stubUserService struct {
	getFn    func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	updateFn func(ctx context.Context, actor service.Actor, userID uuid.UUID, patch domain.UserPatch) (*domain.User, error)
	deleteFn func(ctx context.Context, actor service.Actor, userID uuid.UUID) error
}

func (s *stubUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if s.getFn == nil {
		return nil, errStubNotConfigured
	}
	return s.getFn(ctx, userID)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, actor service.Actor, userID uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	if s.updateFn == nil {
		return nil, errStubNotConfigured
	}
	return s.updateFn(ctx, actor, userID, patch)
}

func (s *stubUserService) DeleteUser(ctx context.Context, actor service.Actor, userID uuid.UUID) error {
	if s.deleteFn == nil {
		return errStubNotConfigured
	}
	return s.deleteFn(ctx, actor, userID)
}

// stubUserStore backs the auth handler tests with an in-memory user map
// keyed by lowercased email.
type stubUserStore struct {
	byEmail   map[string]*domain.User
	createErr error
	created   []*domain.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{byEmail: make(map[string]*domain.User)}
}

func (s *stubUserStore) Create(_ context.Context, user *domain.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.byEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	user.HashedPassword = "hashed:" + user.Password
	user.Password = ""
	s.byEmail[user.Email] = user
	s.created = append(s.created, user)
	return nil
}

func (s *stubUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

func (s *stubUserStore) Update(_ context.Context, _ *domain.User) error { return nil }

func (s *stubUserStore) IncrementSwapScore(_ context.Context, _ uuid.UUID, _ int) error { return nil }

func (s *stubUserStore) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (s *stubUserStore) WithTx(_ *sql.Tx) store.UserStore { return s }

// stubJWTService issues deterministic token strings and validates the ones
// it issued.
type stubJWTService struct {
	generateErr error
	validClaims map[string]*auth.Claims
}

func newStubJWTService() *stubJWTService {
	return &stubJWTService{validClaims: make(map[string]*auth.Claims)}
}

func (s *stubJWTService) GenerateToken(_ context.Context, userID uuid.UUID, role domain.UserRole) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return "access-" + userID.String() + "-" + string(role), nil
}

func (s *stubJWTService) GenerateRefreshToken(_ context.Context, userID uuid.UUID, role domain.UserRole) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return "refresh-" + userID.String() + "-" + string(role), nil
}

func (s *stubJWTService) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	if claims, ok := s.validClaims[token]; ok {
		return claims, nil
	}
	return nil, auth.ErrInvalidToken
}

func (s *stubJWTService) ValidateRefreshToken(_ context.Context, token string) (*auth.Claims, error) {
	if claims, ok := s.validClaims[token]; ok {
		return claims, nil
	}
	return nil, auth.ErrInvalidToken
}

// stubPasswordVerifier accepts passwords matching the "hashed:" prefix scheme
// used by stubUserStore.
type stubPasswordVerifier struct{}

func (stubPasswordVerifier) Compare(hashedPassword, password string) error {
	if hashedPassword == "hashed:"+password {
		return nil
	}
	return auth.ErrInvalidCredentials
}
