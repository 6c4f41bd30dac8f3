// Package room implements the room registry: room lifecycle, seating,
// readiness, and game session instantiation.
package room

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tristano-game/tristano-server-go/internal/game"
)

// Info is a lobby-facing summary of an open room.
type Info struct {
	ID      string   `json:"id"`
	Players []string `json:"players"`
}

// Manager owns all rooms and the player→room index. Seating mutations
// are linearized here so a player can never hold two seats at once.
type Manager struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	byPlayer map[string]string // player name -> room ID
	logger   *zap.Logger
}

// NewManager creates a room manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		byPlayer: make(map[string]string),
		logger:   logger,
	}
}

// CreateRoom opens a room and seats the creator. Fails if the creator
// is already seated anywhere.
func (m *Manager) CreateRoom(creator string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if roomID, seated := m.byPlayer[creator]; seated {
		return nil, game.Validationf("already seated in room %s", roomID)
	}

	r := newRoom(uuid.NewString())
	if err := r.addPlayer(creator); err != nil {
		return nil, err
	}
	m.rooms[r.ID] = r
	m.byPlayer[creator] = r.ID

	m.logger.Info("room created",
		zap.String("room_id", r.ID),
		zap.String("creator", creator),
	)

	return r, nil
}

// JoinRoom seats a player in an existing room.
func (m *Manager) JoinRoom(roomID, name string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return nil, game.NotFoundf("room %s not found", roomID)
	}
	if otherID, seated := m.byPlayer[name]; seated {
		if otherID == roomID {
			return nil, game.Validationf("already seated in room %s", roomID)
		}
		return nil, game.Validationf("already seated in room %s", otherID)
	}

	if err := r.addPlayer(name); err != nil {
		return nil, err
	}
	m.byPlayer[name] = roomID

	m.logger.Info("player joined room",
		zap.String("room_id", roomID),
		zap.String("player", name),
	)

	return r, nil
}

// GetRoom retrieves a room by ID.
func (m *Manager) GetRoom(roomID string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[roomID]
	return r, ok
}

// RoomOf returns the room a player is seated in, if any.
func (m *Manager) RoomOf(name string) (*Room, bool) {
	m.mu.RLock()
	roomID, seated := m.byPlayer[name]
	m.mu.RUnlock()
	if !seated {
		return nil, false
	}
	return m.GetRoom(roomID)
}

// SeatBot seats the scripted opponent. Bot seats are not indexed in
// byPlayer: the built-in opponent may sit in any number of rooms, and a
// room whose only remaining seat is the bot counts as abandoned.
func (m *Manager) SeatBot(roomID, botName string) (*Room, error) {
	m.mu.RLock()
	r, ok := m.rooms[roomID]
	m.mu.RUnlock()
	if !ok {
		return nil, game.NotFoundf("room %s not found", roomID)
	}

	if err := r.addPlayer(botName); err != nil {
		return nil, err
	}

	m.logger.Info("scripted opponent seated",
		zap.String("room_id", roomID),
		zap.String("bot", botName),
	)

	return r, nil
}

// LeaveRoom vacates the player's seat. A room left with no human seat
// is destroyed and its pending scripted-opponent action cancelled.
// Returns the room and whether it was destroyed.
func (m *Manager) LeaveRoom(name string) (*Room, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roomID, seated := m.byPlayer[name]
	if !seated {
		return nil, false, game.Statef("not seated in any room")
	}
	r := m.rooms[roomID]
	delete(m.byPlayer, name)
	r.removePlayer(name)

	humanLeft := false
	for _, seat := range r.Seats() {
		if _, ok := m.byPlayer[seat]; ok {
			humanLeft = true
			break
		}
	}
	if humanLeft {
		m.logger.Info("player left room",
			zap.String("room_id", roomID),
			zap.String("player", name),
		)
		return r, false, nil
	}

	r.CancelAI()
	delete(m.rooms, roomID)

	m.logger.Info("room destroyed",
		zap.String("room_id", roomID),
		zap.String("last_player", name),
	)

	return r, true, nil
}

// OpenRooms summarizes every room for the lobby snapshot, oldest first.
func (m *Manager) OpenRooms() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreateTime().Before(rooms[j].CreateTime())
	})

	infos := make([]Info, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, Info{ID: r.ID, Players: r.Seats()})
	}
	return infos
}

// Count returns the number of open rooms.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// ActiveSessionCount returns the number of rooms with a running game.
func (m *Manager) ActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, r := range m.rooms {
		if r.Session() != nil {
			count++
		}
	}
	return count
}
