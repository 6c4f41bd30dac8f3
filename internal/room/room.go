package room

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/tristano-game/tristano-server-go/internal/game"
)

// MaxSeats is the number of seats in a room.
const MaxSeats = 2

// Room holds up to two seated players, their readiness, and the game
// session once both seats are ready. Seat and timer state is guarded by
// the room mutex; session mutation is serialized by the session itself.
type Room struct {
	ID string

	mu         sync.Mutex
	seats      []string
	ready      map[string]bool
	session    *game.Session
	aiTimer    *time.Timer
	aiActed    bool
	createTime time.Time
}

func newRoom(id string) *Room {
	return &Room{
		ID:         id,
		seats:      make([]string, 0, MaxSeats),
		ready:      make(map[string]bool, MaxSeats),
		createTime: time.Now(),
	}
}

// Seats returns the seated player names in seating order.
func (r *Room) Seats() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seats...)
}

// HasSeat reports whether the player occupies a seat in this room.
func (r *Room) HasSeat(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasSeatLocked(name)
}

func (r *Room) hasSeatLocked(name string) bool {
	for _, seat := range r.seats {
		if seat == name {
			return true
		}
	}
	return false
}

// addPlayer seats a player. Callers go through Manager.JoinRoom, which
// owns the cross-room seating checks.
func (r *Room) addPlayer(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasSeatLocked(name) {
		return game.Validationf("already seated in room %s", r.ID)
	}
	if len(r.seats) >= MaxSeats {
		return game.Validationf("room %s is full", r.ID)
	}
	r.seats = append(r.seats, name)
	return nil
}

// removePlayer vacates a seat and reports whether the room is now empty.
func (r *Room) removePlayer(name string) (empty bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, seat := range r.seats {
		if seat == name {
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			delete(r.ready, name)
			return len(r.seats) == 0, true
		}
	}
	return false, false
}

// MarkReady records a seated player's readiness.
func (r *Room) MarkReady(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasSeatLocked(name) {
		return game.Statef("not seated in room %s", r.ID)
	}
	r.ready[name] = true
	return nil
}

// ReadyNames returns the players who reported ready, sorted.
func (r *Room) ReadyNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.ready))
	for name := range r.ready {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Session returns the running game session, or nil before game start.
func (r *Room) Session() *game.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// StartSessionIfReady instantiates the game session the moment both
// seats are filled and ready. Returns the session and whether this call
// created it; once a session exists, further ready commands are no-ops.
func (r *Room) StartSessionIfReady(handSize int, rng *rand.Rand) (*game.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		return r.session, false
	}
	if len(r.seats) < MaxSeats {
		return nil, false
	}
	for _, seat := range r.seats {
		if !r.ready[seat] {
			return nil, false
		}
	}

	r.session = game.NewSession(r.ID, [2]string{r.seats[0], r.seats[1]}, handSize, rng)
	return r.session, true
}

// DetachSession removes the running session, if any. A vacated seat
// abandons the match: the pending scripted-opponent action is cancelled
// and readiness is cleared so the remaining and future occupants can
// ready up for a fresh game. Returns the detached session.
func (r *Room) DetachSession() *game.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.session
	r.session = nil
	r.aiActed = false
	if r.aiTimer != nil {
		r.aiTimer.Stop()
		r.aiTimer = nil
	}
	for name := range r.ready {
		delete(r.ready, name)
	}
	return sess
}

// ScheduleAI arms the single pending scripted-opponent action, replacing
// any previous one. The timer must be cancelled before the room is
// destroyed so no action lands on a dead session.
func (r *Room) ScheduleAI(delay time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.aiTimer != nil {
		r.aiTimer.Stop()
	}
	r.aiTimer = time.AfterFunc(delay, fn)
}

// CancelAI stops the pending scripted-opponent action, if any.
func (r *Room) CancelAI() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.aiTimer != nil {
		r.aiTimer.Stop()
		r.aiTimer = nil
	}
}

// AIActed reports whether the scripted opponent already took its card
// action in the current phase.
func (r *Room) AIActed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aiActed
}

// SetAIActed updates the per-phase action marker for the scripted
// opponent. Reset whenever it ends a phase.
func (r *Room) SetAIActed(acted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aiActed = acted
}

// CreateTime reports when the room was opened.
func (r *Room) CreateTime() time.Time {
	return r.createTime
}
