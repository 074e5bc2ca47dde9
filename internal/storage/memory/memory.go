// Package memory provides an in-process implementation of storage.Storage.
// Sessions live in a map guarded by a mutex and are lost on restart.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aanand-mishra/readmission-client/internal/controller"
	"github.com/aanand-mishra/readmission-client/internal/render"
	"github.com/aanand-mishra/readmission-client/internal/storage"
)

// ControllerFactory builds the Controller for a new session's panel.
type ControllerFactory func(target render.Target) *controller.Controller

type entry struct {
	session  *storage.Session
	lastSeen time.Time
}

// Memory is the in-memory session store.
type Memory struct {
	newController ControllerFactory
	now           func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
}

// New returns an empty store.
func New(factory ControllerFactory) *Memory {
	return &Memory{
		newController: factory,
		now:           time.Now,
		sessions:      make(map[uuid.UUID]*entry),
	}
}

func (m *Memory) CreateSession() (*storage.Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("memory.CreateSession: generate id: %w", err)
	}

	panel := render.NewPanel()
	s := &storage.Session{
		ID:         id,
		Panel:      panel,
		Controller: m.newController(panel),
	}

	m.mu.Lock()
	m.sessions[id] = &entry{session: s, lastSeen: m.now()}
	m.mu.Unlock()

	return s, nil
}

func (m *Memory) GetSession(id uuid.UUID) (*storage.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("memory.GetSession: %s: %w", id, storage.ErrNotFound)
	}
	e.lastSeen = m.now()
	return e.session, nil
}

func (m *Memory) DeleteSession(id uuid.UUID) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Prune(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
