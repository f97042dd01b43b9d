// Package access decides whether an actor may perform a role-gated operation.
package access

import (
	"github.com/lkendi/Task-Management-System/internal/apperrors"
	"github.com/lkendi/Task-Management-System/internal/entities"
)

// Actor is the authenticated user making a request.
type Actor struct {
	ID    int64
	Name  string
	Email string
	Roles []entities.Role
}

// NewActor builds an actor from a stored user. Users carry a single role today.
func NewActor(user *entities.User) *Actor {
	return &Actor{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Roles: []entities.Role{user.Role},
	}
}

// HasAnyRole reports whether any of the actor's roles is in allowed.
func (a *Actor) HasAnyRole(allowed ...entities.Role) bool {
	for _, have := range a.Roles {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}

type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Err returns the error kind for a denial, nil for Allow.
func (d Decision) Err() error {
	switch d {
	case Unauthenticated:
		return apperrors.ErrUnauthenticated
	case Forbidden:
		return apperrors.ErrForbidden
	}
	return nil
}

// Authorize checks actor against the roles a route accepts. A nil actor is
// Unauthenticated; an actor holding none of the roles is Forbidden.
func Authorize(actor *Actor, allowed ...entities.Role) Decision {
	if actor == nil {
		return Unauthenticated
	}
	if !actor.HasAnyRole(allowed...) {
		return Forbidden
	}
	return Allow
}
