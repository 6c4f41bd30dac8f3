// Package lobby tracks identified players who are not seated in any
// room. A player enters the directory on identify, leaves it when a
// room seats them, and re-enters when they vacate a seat.
package lobby

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Directory is the lobby membership set, keyed by connection ID.
type Directory struct {
	mu      sync.RWMutex
	players map[string]string // connID -> player name
	logger  *zap.Logger
}

// NewDirectory creates an empty lobby directory.
func NewDirectory(logger *zap.Logger) *Directory {
	return &Directory{
		players: make(map[string]string),
		logger:  logger,
	}
}

// Join places a player in the lobby.
func (d *Directory) Join(connID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.players[connID] = name
	d.logger.Debug("player entered lobby",
		zap.String("conn_id", connID),
		zap.String("player", name),
	)
}

// Leave removes a connection from the lobby, returning the name it held.
func (d *Directory) Leave(connID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, ok := d.players[connID]
	if !ok {
		return "", false
	}
	delete(d.players, connID)

	d.logger.Debug("player left lobby",
		zap.String("conn_id", connID),
		zap.String("player", name),
	)
	return name, true
}

// Contains reports whether a connection is currently in the lobby.
func (d *Directory) Contains(connID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.players[connID]
	return ok
}

// Names returns all lobby player names, sorted for stable snapshots.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.players))
	for _, name := range d.players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Conns returns the connection IDs of everyone in the lobby.
func (d *Directory) Conns() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	conns := make([]string, 0, len(d.players))
	for connID := range d.players {
		conns = append(conns, connID)
	}
	return conns
}

// Count returns the number of players in the lobby.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.players)
}
