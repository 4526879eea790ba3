package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Book.
var (
	ErrEmptyBookID      = errors.New("book ID cannot be empty")
	ErrEmptyBookOwnerID = errors.New("book owner ID cannot be empty")
	ErrEmptyBookTitle   = errors.New("book title cannot be empty")
	ErrEmptyBookAuthor  = errors.New("book author cannot be empty")
)

// Book represents a physical book listed by its owner for borrowing or
// exchange. Available is true unless exactly one accepted request currently
// references the book; the request ledger flips it inside the acceptance
// transaction.
type Book struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Language    string    `json:"language,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	ReleaseDate string    `json:"release_date,omitempty"`
	Condition   string    `json:"condition,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBook creates a new Book listing owned by ownerID.
// New listings start available.
func NewBook(ownerID uuid.UUID, title, author string) (*Book, error) {
	now := time.Now().UTC()
	book := &Book{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(title),
		Author:    strings.TrimSpace(author),
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}

	return book, nil
}

// Validate checks if the Book has valid data.
func (b *Book) Validate() error {
	if b.ID == uuid.Nil {
		return ErrEmptyBookID
	}
	if b.OwnerID == uuid.Nil {
		return ErrEmptyBookOwnerID
	}
	if b.Title == "" {
		return ErrEmptyBookTitle
	}
	if b.Author == "" {
		return ErrEmptyBookAuthor
	}
	return nil
}

// IsOwnedBy reports whether userID owns the book.
func (b *Book) IsOwnedBy(userID uuid.UUID) bool {
	return b.OwnerID == userID
}

// BookPatch is an allow-listed sparse update for a book listing.
// Only non-nil fields are applied; unknown payload keys never reach storage.
type BookPatch struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Language    *string `json:"language,omitempty"`
	Genre       *string `json:"genre,omitempty"`
	ReleaseDate *string `json:"release_date,omitempty"`
	Condition   *string `json:"condition,omitempty"`
	CoverURL    *string `json:"cover_url,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *BookPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Language == nil &&
		p.Genre == nil && p.ReleaseDate == nil && p.Condition == nil &&
		p.CoverURL == nil && p.Available == nil
}

// Apply copies the patch's set fields onto the book and bumps UpdatedAt.
// Returns an error if the patched book fails validation.
func (p *BookPatch) Apply(b *Book) error {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.Language != nil {
		b.Language = *p.Language
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
	if p.ReleaseDate != nil {
		b.ReleaseDate = *p.ReleaseDate
	}
	if p.Condition != nil {
		b.Condition = *p.Condition
	}
	if p.CoverURL != nil {
		b.CoverURL = *p.CoverURL
	}
	if p.Available != nil {
		b.Available = *p.Available
	}
	b.UpdatedAt = time.Now().UTC()

	return b.Validate()
}
