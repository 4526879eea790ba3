package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RequestType distinguishes borrow requests from exchange offers.
type RequestType string

// Possible request types.
const (
	RequestTypeBorrow   RequestType = "BORROW"
	RequestTypeExchange RequestType = "EXCHANGE"
)

// RequestStatus is the state of a request in its lifecycle.
// PENDING is the initial state; ACCEPTED and REJECTED are terminal.
type RequestStatus string

// Possible request statuses.
const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusAccepted RequestStatus = "ACCEPTED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// Common validation and transition errors for Request.
var (
	ErrEmptyRequestID          = errors.New("request ID cannot be empty")
	ErrEmptyRequesterID        = errors.New("requester ID cannot be empty")
	ErrEmptyRequestBookID      = errors.New("request book ID cannot be empty")
	ErrEmptyRequestOwnerID     = errors.New("request owner ID cannot be empty")
	ErrInvalidRequestType      = errors.New("invalid request type")
	ErrInvalidRequestStatus    = errors.New("invalid request status")
	ErrOwnBookRequest          = errors.New("cannot request own book")
	ErrRequestAlreadyDecided   = errors.New("request already decided")
	ErrRequestNotPending       = errors.New("only pending requests can be canceled")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// Request is a borrow or exchange offer made by a requester against another
// user's book. OwnerID is copied from the book at creation time and is
// immutable afterwards, so the decision authority is fixed even if the book
// changes hands later.
type Request struct {
	ID           uuid.UUID     `json:"id"`
	RequesterID  uuid.UUID     `json:"requester_id"`
	BookID       uuid.UUID     `json:"book_id"`
	OwnerID      uuid.UUID     `json:"owner_id"`
	Type         RequestType   `json:"type"`
	Status       RequestStatus `json:"status"`
	StartDate    time.Time     `json:"start_date"`
	DurationDays int           `json:"duration_days,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// RequestMetadata carries the requester-supplied details of a new request.
type RequestMetadata struct {
	StartDate    time.Time
	DurationDays int
	Reason       string
}

// NewRequest creates a pending Request from requesterID against the given
// book. The book's owner is recorded on the request. Returns
// ErrOwnBookRequest if the requester owns the book.
func NewRequest(
	requesterID uuid.UUID,
	book *Book,
	reqType RequestType,
	meta RequestMetadata,
) (*Request, error) {
	if book.IsOwnedBy(requesterID) {
		return nil, ErrOwnBookRequest
	}

	now := time.Now().UTC()
	startDate := meta.StartDate
	if startDate.IsZero() {
		startDate = now
	}

	req := &Request{
		ID:           uuid.New(),
		RequesterID:  requesterID,
		BookID:       book.ID,
		OwnerID:      book.OwnerID,
		Type:         reqType,
		Status:       RequestStatusPending,
		StartDate:    startDate,
		DurationDays: meta.DurationDays,
		Reason:       meta.Reason,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks if the Request has valid data.
func (r *Request) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRequestID
	}
	if r.RequesterID == uuid.Nil {
		return ErrEmptyRequesterID
	}
	if r.BookID == uuid.Nil {
		return ErrEmptyRequestBookID
	}
	if r.OwnerID == uuid.Nil {
		return ErrEmptyRequestOwnerID
	}
	if r.RequesterID == r.OwnerID {
		return ErrOwnBookRequest
	}
	if !ValidRequestType(r.Type) {
		return ErrInvalidRequestType
	}
	if !validRequestStatus(r.Status) {
		return ErrInvalidRequestStatus
	}
	return nil
}

// IsPending reports whether the request is still undecided.
func (r *Request) IsPending() bool {
	return r.Status == RequestStatusPending
}

// IsExchange reports whether the request is an exchange offer.
func (r *Request) IsExchange() bool {
	return r.Type == RequestTypeExchange
}

// Decide transitions the request from PENDING to the given terminal status.
// Returns ErrRequestAlreadyDecided if the request is no longer pending,
// including re-application of the status it already holds, and
// ErrInvalidStatusTransition if status is not a terminal status.
func (r *Request) Decide(status RequestStatus) error {
	if !ValidDecision(status) {
		return ErrInvalidStatusTransition
	}
	if r.Status != RequestStatusPending {
		return ErrRequestAlreadyDecided
	}

	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// ValidDecision reports whether s is a terminal status an owner may apply.
func ValidDecision(s RequestStatus) bool {
	return s == RequestStatusAccepted || s == RequestStatusRejected
}

// ValidRequestType reports whether t is a recognized request type.
func ValidRequestType(t RequestType) bool {
	switch t {
	case RequestTypeBorrow, RequestTypeExchange:
		return true
	default:
		return false
	}
}

func validRequestStatus(s RequestStatus) bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected:
		return true
	default:
		return false
	}
}
