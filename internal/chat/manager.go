// Package chat relays text messages between players seated in the same
// room. Rendering is the client's concern; the server only fans the
// message out to the room's members.
package chat

import (
	"sync"

	"go.uber.org/zap"
)

// Manager tracks chat membership per room.
type Manager struct {
	mu      sync.RWMutex
	rooms   map[string]map[string]bool // room ID -> member names
	logger  *zap.Logger
	history map[string][]Message
}

// Message is one relayed chat line.
type Message struct {
	RoomID string
	From   string
	Text   string
}

// historyLimit bounds the per-room backlog kept for late joiners.
const historyLimit = 50

// NewManager creates a chat manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		rooms:   make(map[string]map[string]bool),
		history: make(map[string][]Message),
		logger:  logger,
	}
}

// JoinRoom adds a member to a room's chat.
func (m *Manager) JoinRoom(roomID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, ok := m.rooms[roomID]
	if !ok {
		members = make(map[string]bool)
		m.rooms[roomID] = members
	}
	members[name] = true
}

// LeaveRoom removes a member from a room's chat.
func (m *Manager) LeaveRoom(roomID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if members, ok := m.rooms[roomID]; ok {
		delete(members, name)
	}
}

// RemoveRoom drops a room's chat state entirely.
func (m *Manager) RemoveRoom(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rooms, roomID)
	delete(m.history, roomID)
}

// IsMember reports whether a player belongs to a room's chat.
func (m *Manager) IsMember(roomID, name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members, ok := m.rooms[roomID]
	return ok && members[name]
}

// Record appends a message to the room's bounded backlog.
func (m *Manager) Record(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	backlog := append(m.history[msg.RoomID], msg)
	if len(backlog) > historyLimit {
		backlog = backlog[len(backlog)-historyLimit:]
	}
	m.history[msg.RoomID] = backlog

	m.logger.Debug("chat message recorded",
		zap.String("room_id", msg.RoomID),
		zap.String("from", msg.From),
	)
}

// History returns the room's recorded backlog, oldest first.
func (m *Manager) History(roomID string) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]Message(nil), m.history[roomID]...)
}
