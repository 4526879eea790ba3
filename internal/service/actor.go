package service

import "github.com/google/uuid"

// Actor identifies the authenticated user performing an operation. Admin is
// taken from the access token claims, so a role change takes effect on the
// next login.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

// Is reports whether the actor is the user identified by id.
func (a Actor) Is(id uuid.UUID) bool {
	return a.ID == id
}
