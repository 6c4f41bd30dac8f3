package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/tristano-game/tristano-server-go/internal/card"
)

// Session is the authoritative live state of one two-player match. All
// mutation happens behind the session mutex, so commands targeting the
// same room are serialized while different rooms proceed independently.
type Session struct {
	mu sync.Mutex

	roomID   string
	players  [2]string
	turn     string
	phase    Phase
	states   map[string]*PlayerState
	finished bool
	winner   string

	startTime time.Time
}

// Snapshot is a deep copy of a session, safe to hand to the gateway for
// broadcasting after the lock is released.
type Snapshot struct {
	RoomID   string                  `json:"room_id"`
	Players  [2]string               `json:"players"`
	Turn     string                  `json:"turn"`
	Phase    Phase                   `json:"phase"`
	Finished bool                    `json:"finished"`
	Winner   string                  `json:"winner,omitempty"`
	States   map[string]*PlayerState `json:"states"`
}

// NewSession builds the session for a freshly readied room. The first
// player plays the red deck, the second the black deck; each deck is
// shuffled with rng and an initial hand is dealt from the top. The first
// player opens at the draw phase.
func NewSession(roomID string, players [2]string, handSize int, rng *rand.Rand) *Session {
	s := &Session{
		roomID:    roomID,
		players:   players,
		turn:      players[0],
		phase:     PhaseDraw,
		states:    make(map[string]*PlayerState, 2),
		startTime: time.Now(),
	}

	colors := [2]card.Color{card.ColorRed, card.ColorBlack}
	for i, name := range players {
		state := NewPlayerState(Shuffle(card.NewDeck(colors[i]), rng))
		for range handSize {
			state.Draw()
		}
		s.states[name] = state
	}

	return s
}

// Players returns both seat names in seating order.
func (s *Session) Players() [2]string {
	return s.players
}

// Opponent returns the other seat's name, or "" if player is not seated.
func (s *Session) Opponent(player string) string {
	switch player {
	case s.players[0]:
		return s.players[1]
	case s.players[1]:
		return s.players[0]
	}
	return ""
}

// StartTime reports when the session was created.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Turn returns the name of the player whose turn it is.
func (s *Session) Turn() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Finished reports whether the match has been decided. A finished
// session accepts no further game commands; the room outlives it until
// a seat is vacated.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Winner returns the winning player's name, or "" while undecided.
func (s *Session) Winner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner
}

// guard validates the common preconditions of a turn-scoped command.
// wantPhase < 0 skips the phase check. Callers must hold s.mu.
func (s *Session) guard(player string, wantPhase Phase) error {
	if _, ok := s.states[player]; !ok {
		return NotFoundf("player %s is not part of this game", player)
	}
	if s.finished {
		return Statef("game is over")
	}
	if s.turn != player {
		return Statef("not your turn")
	}
	if wantPhase >= 0 && s.phase != wantPhase {
		return Statef("command not allowed in %s phase", s.phase)
	}
	return nil
}

// Draw draws one card for the player. Legal only in the draw phase.
func (s *Session) Draw(player string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(player, PhaseDraw); err != nil {
		return err
	}
	s.states[player].Draw()
	return nil
}

// PlayToField plays a hand card into an empty zone during main phase.
func (s *Session) PlayToField(player string, handIndex, zoneIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(player, PhaseMain); err != nil {
		return err
	}
	return s.states[player].PlayToField(handIndex, zoneIndex)
}

// AttackMonster resolves combat between one of the player's zones and
// one of the opponent's. Legal only in the battle phase.
func (s *Session) AttackMonster(player string, attackerIndex, defenderIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(player, PhaseBattle); err != nil {
		return err
	}
	return ResolveCombat(s.states[player], s.states[s.Opponent(player)], attackerIndex, defenderIndex)
}

// AttackShield breaks one of the opponent's intact shields. Breaking the
// last one decides the match.
func (s *Session) AttackShield(player string, targetIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(player, PhaseBattle); err != nil {
		return err
	}

	defender := s.states[s.Opponent(player)]
	if err := defender.AttackShield(targetIndex); err != nil {
		return err
	}

	if defender.IntactShields() == 0 {
		s.finished = true
		s.winner = player
	}
	return nil
}

// RegenerateShield discards an ace to restore a broken shield. Allowed
// in any phase of the player's own turn.
func (s *Session) RegenerateShield(player string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(player, -1); err != nil {
		return err
	}
	return s.states[player].RegenerateShield()
}

// EndPhase advances to the next phase; leaving the end phase flips the
// turn to the other player and restarts the cycle at draw.
func (s *Session) EndPhase(player string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(player, -1); err != nil {
		return err
	}

	if s.phase == PhaseEnd {
		s.turn = s.Opponent(player)
	}
	s.phase = s.phase.next()
	return nil
}

// Snapshot returns a deep copy of the full session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make(map[string]*PlayerState, len(s.states))
	for name, state := range s.states {
		states[name] = state.clone()
	}

	return Snapshot{
		RoomID:   s.roomID,
		Players:  s.players,
		Turn:     s.turn,
		Phase:    s.phase,
		Finished: s.finished,
		Winner:   s.winner,
		States:   states,
	}
}
