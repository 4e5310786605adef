package app

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Meta-Virgo/Tarot/internal/domain"
)

// Registry holds live sessions keyed by id for the HTTP surface. Sessions
// are memory-resident only; nothing persists across restarts.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  func() *Session
}

func NewRegistry(factory func() *Session) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
	}
}

// Create starts a fresh session and returns its id.
func (r *Registry) Create() (string, *Session) {
	s := r.factory()
	id := uuid.NewString()

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	return id, s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
