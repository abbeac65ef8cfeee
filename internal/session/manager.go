// Package session keeps one ledger per user session.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// RepositoryFactory builds the storage of a session's ledger.
type RepositoryFactory func(sessionID string) transaction.Repository

type session struct {
	mu       sync.Mutex
	ledger   *transaction.Service
	lastUsed time.Time
}

// Manager maps session ids to ledgers. Ledgers are created on first use, so a session whose
// in-process state was evicted or lost on restart gets a ledger over the same storage again.
// Calls for one session are serialized; different sessions proceed in parallel.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  RepositoryFactory
	now      func() time.Time
}

func NewManager(factory RepositoryFactory) *Manager {
	return &Manager{
		sessions: make(map[string]*session),
		factory:  factory,
		now:      time.Now,
	}
}

// New starts a session and returns its id.
func (m *Manager) New() string {
	id := uuid.NewString()
	m.get(id)

	return id
}

func (m *Manager) get(id string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		s = &session{ledger: transaction.NewService(m.factory(id))}
		m.sessions[id] = s
	}

	s.lastUsed = m.now()

	return s
}

// Do runs fn with the ledger of session id while holding that session's lock.
func (m *Manager) Do(ctx context.Context, id string, fn func(ctx context.Context, ledger *transaction.Service) error) error {
	s := m.get(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	return fn(ctx, s.ledger)
}

// Len returns the number of sessions held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Evict drops sessions unused for longer than idle and returns how many were dropped.
// In-memory ledgers are lost with them.
func (m *Manager) Evict(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-idle)
	n := 0

	for id, s := range m.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}

	return n
}
