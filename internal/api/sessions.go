package api

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/pyq-ai/pyq-assistant/internal/roadmap"
)

// ErrSessionNotFound is returned for an unknown session ID.
var ErrSessionNotFound = errors.New("session not found")

// sessionEntry ties a simulation session to the exam it was created for.
type sessionEntry struct {
	ID      string
	ExamID  string
	Session *roadmap.Session
}

// SessionManager holds the live roadmap sessions. Sessions are in-memory
// only; a restart drops them, which matches their throwaway nature.
type SessionManager struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

// NewSessionManager creates an empty session registry.
func NewSessionManager() *SessionManager {
	return &SessionManager{entries: make(map[string]*sessionEntry)}
}

// Create registers a new session over the given roadmap and returns its ID.
func (m *SessionManager) Create(examID string, r roadmap.Roadmap, opts ...roadmap.SessionOption) *sessionEntry {
	e := &sessionEntry{
		ID:      newSessionID(),
		ExamID:  examID,
		Session: roadmap.NewSession(r, opts...),
	}
	m.mu.Lock()
	m.entries[e.ID] = e
	m.mu.Unlock()
	return e
}

// Get looks up a session by ID.
func (m *SessionManager) Get(id string) (*sessionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Delete removes a session. Removing an unknown ID is not an error.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
}

func newSessionID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
