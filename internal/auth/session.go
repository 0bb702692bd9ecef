package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evroutex/fleet-dispatch/internal/models"
)

// Session is a live authenticated identity. Stats is the only mutable
// field; it is overwritten wholesale on each telemetry submission and
// discarded with the session.
type Session struct {
	ID        string
	Identity  string
	Role      models.Role
	Stats     *models.VehicleStats
	CreatedAt time.Time
}

// SessionTable tracks live sessions in memory. Sessions exist from
// login (or registration) until logout; nothing here survives a restart,
// which matches the ephemeral scope of session state.
type SessionTable struct {
	mu         sync.RWMutex
	byID       map[string]*Session
	byIdentity map[string]string // identity -> most recent session id
}

// NewSessionTable creates an empty session table.
func NewSessionTable() *SessionTable {
	return &SessionTable{
		byID:       make(map[string]*Session),
		byIdentity: make(map[string]string),
	}
}

// Create registers a new session for the identity.
func (t *SessionTable) Create(identity string, role models.Role) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		Identity:  identity,
		Role:      role,
		CreatedAt: time.Now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.byID[session.ID] = session
	t.byIdentity[identity] = session.ID
	return session
}

// Get returns the session with the given id, if it is still live.
func (t *SessionTable) Get(id string) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.byID[id]
	return s, ok
}

// FindByIdentity returns the most recent live session for an identity.
func (t *SessionTable) FindByIdentity(identity string) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byIdentity[identity]
	if !ok {
		return nil, false
	}
	s, ok := t.byID[id]
	return s, ok
}

// SetStats overwrites the session's vehicle stats wholesale.
func (t *SessionTable) SetStats(id string, stats models.VehicleStats) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.byID[id]
	if !ok {
		return false
	}
	s.Stats = &stats
	return true
}

// Stats returns the session's current vehicle stats, if any.
func (t *SessionTable) Stats(id string) (*models.VehicleStats, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.byID[id]
	if !ok || s.Stats == nil {
		return nil, false
	}
	stats := *s.Stats
	return &stats, true
}

// Destroy drops a session and all its fields, including stats.
func (t *SessionTable) Destroy(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.byID[id]
	if !ok {
		return
	}
	delete(t.byID, id)
	if t.byIdentity[s.Identity] == id {
		delete(t.byIdentity, s.Identity)
	}
}
