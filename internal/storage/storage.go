// Package storage defines the Storage interface for browser sessions.
//
// A session is one status panel plus the Controller that renders to it.
// Handlers depend only on this interface, so tests can hand them any
// implementation.
package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aanand-mishra/readmission-client/internal/controller"
	"github.com/aanand-mishra/readmission-client/internal/render"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Session is a browser's form state.
type Session struct {
	ID         uuid.UUID
	Panel      *render.Panel
	Controller *controller.Controller
}

// Storage is the session store contract.
type Storage interface {
	// CreateSession starts a new session with an empty panel.
	CreateSession() (*Session, error)

	// GetSession returns the session with the given id and marks it as
	// used. Returns ErrNotFound when there is none.
	GetSession(id uuid.UUID) (*Session, error)

	// DeleteSession forgets a session. Deleting an unknown id is not an error.
	DeleteSession(id uuid.UUID) error

	// Prune drops sessions unused since before cutoff and returns how many
	// were removed.
	Prune(cutoff time.Time) int
}
