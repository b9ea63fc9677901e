// Package guard decides whether a session may enter a route.
package guard

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means the caller must log in first.
	ErrUnauthenticated = errors.New("not logged in")
	// ErrForbidden means the route needs an administrator.
	ErrForbidden = errors.New("administrator access required")
	// ErrAlreadyAuthenticated means the caller is already logged in.
	ErrAlreadyAuthenticated = errors.New("already logged in")
)

// Route names a screen or command group of the console.
type Route int

const (
	Login Route = iota
	Home
	Users
	Groups
	ServiceAccounts
	AccessTokens
	Experiments
	Models
	Prompts
	Gateway
	Permissions
	PatternPermissions
	Webhooks
	Trash
)

// Policy describes what a route requires.
type Policy struct {
	RequiresAuth  bool
	RequiresAdmin bool
	// GuestOnly routes redirect authenticated sessions away.
	GuestOnly bool
}

// Policy returns the access policy of r.
func (r Route) Policy() Policy {
	switch r {
	case Login:
		return Policy{GuestOnly: true}
	case Home, Users, Groups, AccessTokens, Experiments, Models, Prompts, Gateway, Permissions:
		return Policy{RequiresAuth: true}
	case ServiceAccounts, PatternPermissions, Webhooks, Trash:
		return Policy{RequiresAuth: true, RequiresAdmin: true}
	default:
		panic(fmt.Sprintf("guard: unknown route %d", int(r)))
	}
}

// Session is what the guard knows about the caller.
type Session struct {
	Authenticated bool
	IsAdmin       bool
}

// Decision is the outcome of a guard check.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectHome
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	case Forbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Check applies the policy of r to s.
func Check(r Route, s Session) Decision {
	p := r.Policy()
	switch {
	case p.GuestOnly && s.Authenticated:
		return RedirectHome
	case p.RequiresAuth && !s.Authenticated:
		return RedirectLogin
	case p.RequiresAdmin && !s.IsAdmin:
		return Forbidden
	default:
		return Allow
	}
}

// Err converts a decision into the error a command should return.
func Err(d Decision) error {
	switch d {
	case RedirectLogin:
		return ErrUnauthenticated
	case RedirectHome:
		return ErrAlreadyAuthenticated
	case Forbidden:
		return ErrForbidden
	default:
		return nil
	}
}
