// Package service holds the story, comment and like business rules.
package service

import "inkwell/internal/models"

// Capability is what a caller needs to perform an action.
type Capability int

const (
	// AnyAuthenticated allows any logged-in user.
	AnyAuthenticated Capability = iota
	// OwnerOnly allows only the owner of the resource.
	OwnerOnly
)

// Authorize is the single permission gate for every mutation.
// actorID 0 means no session.
func Authorize(actorID, ownerID uint, capability Capability) error {
	if actorID == 0 {
		return models.NewUnauthenticatedError("Please log in to continue")
	}
	if capability == OwnerOnly && actorID != ownerID {
		return models.NewForbiddenError("You can only change your own content")
	}
	return nil
}
