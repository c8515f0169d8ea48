package shared

import "github.com/google/uuid"

// Actor identifies who performs an operation.
// It is resolved once at the edge (JWT claims or headers) and passed down
// explicitly; nothing below the HTTP layer reads session state.
type Actor struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Username string
}

// HasUser reports whether the actor carries an authenticated user id
func (a Actor) HasUser() bool {
	return a.UserID != uuid.Nil
}

// UserRef returns a pointer to the user id, or nil for anonymous actors
func (a Actor) UserRef() *uuid.UUID {
	if !a.HasUser() {
		return nil
	}
	id := a.UserID
	return &id
}
