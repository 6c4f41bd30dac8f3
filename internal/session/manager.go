package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Session tracks one live client connection and the player name it
// identified with. A connection has at most one identity for its
// lifetime; identity is client-claimed and never verified.
type Session struct {
	ID   string
	Host string

	mu           sync.RWMutex
	playerName   string
	connectTime  time.Time
	lastActivity time.Time
}

// PlayerName returns the identity bound to the session, or "".
func (s *Session) PlayerName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerName
}

// UpdateActivity refreshes the last-activity timestamp.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// Manager owns all live connection sessions and the name→connection
// index used to route events to a specific player.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byPlayer map[string]string
	logger   *zap.Logger
}

// NewManager creates a session manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		byPlayer: make(map[string]string),
		logger:   logger,
	}
}

// CreateSession registers a new connection.
func (m *Manager) CreateSession(id, host string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:           id,
		Host:         host,
		connectTime:  now,
		lastActivity: now,
	}
	m.sessions[id] = sess

	m.logger.Debug("session created",
		zap.String("session_id", id),
		zap.String("host", host),
	)

	return sess
}

// Identify binds a player name to a session. Names are unique among
// live connections and a session identifies at most once.
func (m *Manager) Identify(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("player name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	if sess.PlayerName() != "" {
		return fmt.Errorf("session already identified as %s", sess.PlayerName())
	}
	if _, taken := m.byPlayer[name]; taken {
		return fmt.Errorf("name %s is already connected", name)
	}

	sess.mu.Lock()
	sess.playerName = name
	sess.mu.Unlock()
	m.byPlayer[name] = id

	return nil
}

// GetSession retrieves a session by connection ID.
func (m *Manager) GetSession(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	return sess, ok
}

// ConnOf resolves the connection ID a player name is bound to.
func (m *Manager) ConnOf(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byPlayer[name]
	return id, ok
}

// RemoveSession drops a session and returns the identity it held.
func (m *Manager) RemoveSession(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return ""
	}
	delete(m.sessions, id)

	name := sess.PlayerName()
	if name != "" {
		delete(m.byPlayer, name)
	}

	m.logger.Debug("session removed",
		zap.String("session_id", id),
		zap.String("player", name),
	)

	return name
}

// ActiveSessions returns the number of live connections.
func (m *Manager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
