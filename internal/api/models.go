package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
)

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// LoginRequest is the payload for authenticating an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse carries the issued token pair and the authenticated user.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

// UserResponse is the client-facing projection of a user profile. Password
// material never appears here.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Age       int       `json:"age,omitempty"`
	Address   string    `json:"address,omitempty"`
	SwapScore int       `json:"swap_score"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse maps a domain user to its API representation.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
		Address:   u.Address,
		SwapScore: u.SwapScore,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// UpdateProfileRequest is a sparse profile update; absent fields are left
// untouched.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Age       *int    `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	Address   *string `json:"address,omitempty"`
}

// Patch converts the request into a domain patch.
func (r *UpdateProfileRequest) Patch() domain.UserPatch {
	return domain.UserPatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Age:       r.Age,
		Address:   r.Address,
	}
}

// CreateBookRequest is the payload for listing a book.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Language    string `json:"language,omitempty"`
	Genre       string `json:"genre,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
	Condition   string `json:"condition,omitempty"`
	CoverURL    string `json:"cover_url,omitempty" validate:"omitempty,url"`
}

// Details returns the optional listing fields as a patch applied on top of
// the required title and author.
func (r *CreateBookRequest) Details() domain.BookPatch {
	patch := domain.BookPatch{}
	if r.Language != "" {
		patch.Language = &r.Language
	}
	if r.Genre != "" {
		patch.Genre = &r.Genre
	}
	if r.ReleaseDate != "" {
		patch.ReleaseDate = &r.ReleaseDate
	}
	if r.Condition != "" {
		patch.Condition = &r.Condition
	}
	if r.CoverURL != "" {
		patch.CoverURL = &r.CoverURL
	}
	return patch
}

// UpdateBookRequest is a sparse listing update; absent fields are left
// untouched.
type UpdateBookRequest struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Language    *string `json:"language,omitempty"`
	Genre       *string `json:"genre,omitempty"`
	ReleaseDate *string `json:"release_date,omitempty"`
	Condition   *string `json:"condition,omitempty"`
	CoverURL    *string `json:"cover_url,omitempty" validate:"omitempty,url"`
	Available   *bool   `json:"available,omitempty"`
}

// Patch converts the request into a domain patch.
func (r *UpdateBookRequest) Patch() domain.BookPatch {
	return domain.BookPatch{
		Title:       r.Title,
		Author:      r.Author,
		Language:    r.Language,
		Genre:       r.Genre,
		ReleaseDate: r.ReleaseDate,
		Condition:   r.Condition,
		CoverURL:    r.CoverURL,
		Available:   r.Available,
	}
}

// CreateRequestRequest is the payload for opening a borrow or exchange
// request against a book.
type CreateRequestRequest struct {
	BookID       uuid.UUID `json:"book_id" validate:"required"`
	Type         string    `json:"type" validate:"required,oneof=BORROW EXCHANGE"`
	StartDate    time.Time `json:"start_date,omitempty"`
	DurationDays int       `json:"duration_days,omitempty" validate:"omitempty,gte=1,lte=365"`
	Reason       string    `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// Metadata returns the requester-supplied details of the new request.
func (r *CreateRequestRequest) Metadata() domain.RequestMetadata {
	return domain.RequestMetadata{
		StartDate:    r.StartDate,
		DurationDays: r.DurationDays,
		Reason:       r.Reason,
	}
}

// DecideRequestRequest is the owner's verdict on a pending request.
type DecideRequestRequest struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
}
