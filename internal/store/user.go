package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user's plaintext Password
	// field is hashed before storage and cleared on return.
	// Returns ErrEmailExists if the email is already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address (case-insensitive).
	// Returns ErrUserNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update saves changes to an existing user's profile fields.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// IncrementSwapScore adds delta to the user's swap score. Used by the
	// request ledger inside the acceptance transaction for exchanges.
	IncrementSwapScore(ctx context.Context, id uuid.UUID, delta int) error

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserStore instance bound to the provided
	// transaction. The transaction is created and managed by the caller,
	// typically a service using RunInTransaction.
	WithTx(tx *sql.Tx) UserStore
}
